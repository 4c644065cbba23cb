package tui

import (
	"todo-cli/internal/app"
	"todo-cli/internal/model"
)

type pane int

const (
	paneFlat pane = iota
	paneGrouped
)

type modalKind int

const (
	modalNone modalKind = iota
	modalAlert
	modalConfirm
	modalPrompt
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

type landingButton int

const (
	landingLogin landingButton = iota
	landingRegister
)

type groupSection int

const (
	sectionInProgress groupSection = iota
	sectionCompleted
)

// Messages delivered by teaPorts. Each one mirrors an app.Ports call and is applied
// inside Update.
type showViewMsg struct{ view app.View }

type setProfileMsg struct{ username string }

type clearErrorsMsg struct{ form app.FormID }

type fieldErrorMsg struct {
	form    app.FormID
	inputID string
	message string
}

type renderFlatMsg struct{ tasks []model.Task }

type appendFlatMsg struct{ task model.Task }

type renderGroupedMsg struct{ inProgress, completed []model.Task }

type resetTaskFormMsg struct{}

type closePopupMsg struct{}

type alertMsg struct{ message string }

type noticeMsg struct{ message string }

type confirmRequestMsg struct {
	message string
	reply   chan<- bool
}

type promptRequestMsg struct {
	label   string
	initial string
	reply   chan<- promptReply
}

type promptReply struct {
	value string
	ok    bool
}

// handlerDoneMsg ends one controller call started by appModel.start.
type handlerDoneMsg struct{}

// modalState is one queued modal. Only the head of the queue is shown.
type modalState struct {
	kind    modalKind
	title   string
	message string

	confirmFocus  confirmModalFocus
	confirmReply  chan<- bool
	promptReply   chan<- promptReply
	promptInitial string
}
