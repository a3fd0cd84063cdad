package model

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// UnmarshalJSON accepts the question reference either as a plain
// questionId or as the expanded {"id": ...} object older payloads carry.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw struct {
		Question json.RawMessage `json:"question"`
		Value    any             `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.Value = raw.Value
	a.Question = ""

	ref := bytes.TrimSpace(raw.Question)
	if len(ref) == 0 || bytes.Equal(ref, []byte("null")) {
		return nil
	}

	switch ref[0] {
	case '"':
		return json.Unmarshal(ref, &a.Question)
	case '{':
		var obj struct {
			ID         any    `json:"id"`
			QuestionID string `json:"questionId"`
		}
		if err := json.Unmarshal(ref, &obj); err != nil {
			return err
		}
		if obj.QuestionID != "" {
			a.Question = obj.QuestionID
		} else if obj.ID != nil {
			a.Question = fmt.Sprint(obj.ID)
		}
		return nil
	default:
		var id any
		if err := json.Unmarshal(ref, &id); err != nil {
			return err
		}
		a.Question = fmt.Sprint(id)
		return nil
	}
}

// Client is the canonical shape of a respondent's personal record.
type Client struct {
	ID         int    `json:"id"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
}

const RespondentClient = "Client"

func (c Client) Respondent() Respondent {
	return Respondent{ID: c.ID, Type: RespondentClient}
}

// DecodeClient reads a client record that may use snake_case names, the
// legacy camelCase aliases, or both. Snake_case wins on conflict.
func DecodeClient(data []byte) (Client, error) {
	var raw struct {
		ID              int    `json:"id"`
		FirstName       string `json:"first_name"`
		MiddleName      string `json:"middle_name"`
		LastName        string `json:"last_name"`
		LegacyFirstName string `json:"firstName"`
		LegacyMiddle    string `json:"middleName"`
		LegacyLastName  string `json:"lastName"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Client{}, err
	}

	return Client{
		ID:         raw.ID,
		FirstName:  firstNonEmpty(raw.FirstName, raw.LegacyFirstName),
		MiddleName: firstNonEmpty(raw.MiddleName, raw.LegacyMiddle),
		LastName:   firstNonEmpty(raw.LastName, raw.LegacyLastName),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
