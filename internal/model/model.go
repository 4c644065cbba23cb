package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

type Status string

const (
	StatusChecked   Status = "CHECKED"
	StatusUnchecked Status = "UNCHECKED"
)

// Checked reports whether s is exactly CHECKED. Unknown or empty values are unchecked.
func (s Status) Checked() bool { return s == StatusChecked }

func StatusFromChecked(checked bool) Status {
	if checked {
		return StatusChecked
	}
	return StatusUnchecked
}

// TaskID is the server-owned identifier of a task. The service may send it as a JSON
// string or a JSON number; both decode to the same textual id.
type TaskID string

func (id TaskID) String() string { return string(id) }

func (id TaskID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id *TaskID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("task id must be a string or a number")
	}
	if i, err := n.Int64(); err == nil {
		*id = TaskID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = TaskID(n.String())
	return nil
}

func (id TaskID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

type Task struct {
	ID          TaskID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// UnmarshalJSON accepts both "id" and the Mongo-style "_id" key.
func (t *Task) UnmarshalJSON(b []byte) error {
	type wire struct {
		ID          TaskID `json:"id"`
		MongoID     TaskID `json:"_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      Status `json:"status"`
	}
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	id := w.ID
	if id.IsZero() {
		id = w.MongoID
	}
	*t = Task{
		ID:          id,
		Title:       w.Title,
		Description: w.Description,
		Status:      w.Status,
	}
	return nil
}

func (t Task) Checked() bool { return t.Status.Checked() }

type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
