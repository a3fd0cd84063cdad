package form

import (
	"errors"
	"fmt"

	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/log"
	"github.com/mbolis/quick-survey-engine/mapper"
	"github.com/mbolis/quick-survey-engine/model"
	"github.com/mbolis/quick-survey-engine/warnings"
)

var (
	ErrUnknownKey = errors.New("no node with this key")
	ErrDiscarded  = errors.New("session discarded")
)

// Session is the Controller of a single editing session. It is not safe
// for concurrent use.
type Session struct {
	survey    *model.Survey
	idx       *definition.Index
	state     State
	warnings  []warnings.Warning
	stale     []model.Answer
	discarded bool
}

var _ Controller = (*Session)(nil)

// NewSession starts editing survey. When resp is not nil its answers
// seed the form values, as in an edit flow.
func NewSession(survey *model.Survey, resp *model.Response) *Session {
	s := &Session{
		survey: survey,
		idx:    definition.NewIndex(survey.Definition),
		state: State{
			Values: model.FormValues{},
			Props:  map[string]Props{},
		},
	}
	if resp != nil {
		s.state.Values = mapper.ResponseToFormValues(*resp, s.idx)
		s.stale = mapper.Stale(*resp, s.idx)
		if len(s.stale) > 0 {
			log.Debugf("form.session: survey %d, response %d has %d stale answers", survey.ID, resp.ID, len(s.stale))
		}
	}
	s.recompute()
	return s
}

// recompute re-runs the warnings pass. Stale answers of the response the
// session started from have no key in the form values, so they are
// reported for as long as the session lives.
func (s *Session) recompute() {
	s.warnings = warnings.ForResponse(s.idx, model.Response{
		Answers: append(mapper.FormValuesToAnswers(s.state.Values, s.idx), s.stale...),
	})
}

func (s *Session) Survey() *model.Survey {
	return s.survey
}

func (s *Session) Index() *definition.Index {
	return s.idx
}

// Values returns the live form values. Callers must go through
// OnValueChange to modify them.
func (s *Session) Values() model.FormValues {
	return s.state.Values
}

func (s *Session) Value(key string) any {
	return s.state.Values[key]
}

func (s *Session) Props(key string) Props {
	return s.state.Props[key]
}

// OnValueChange sets the value of the question with the given form key
// and recomputes the warnings. An empty value clears the entry.
func (s *Session) OnValueChange(key string, value any) error {
	if s.discarded {
		return ErrDiscarded
	}
	if key != model.SurveyIDKey {
		if _, ok := s.idx.ByKey(key); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
	}

	if mapper.IsEmpty(value) {
		delete(s.state.Values, key)
	} else {
		s.state.Values[key] = value
	}
	s.recompute()
	return nil
}

// OnPropsChange replaces the props of the node with the given key. Keys
// are the ones the session Index hands out; nil props clear the entry.
func (s *Session) OnPropsChange(key string, props Props) error {
	if s.discarded {
		return ErrDiscarded
	}
	if _, ok := s.idx.Node(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if props == nil {
		delete(s.state.Props, key)
		return nil
	}
	s.state.Props[key] = props
	return nil
}

// Warnings returns the findings for the current values.
func (s *Session) Warnings() []warnings.Warning {
	return s.warnings
}

// Submit turns the current values into the payload to persist.
func (s *Session) Submit(respondent model.Respondent) (model.Response, error) {
	if s.discarded {
		return model.Response{}, ErrDiscarded
	}
	return mapper.Submission(s.state.Values, s.idx, s.survey.ID, respondent), nil
}

// Discard drops the form state. Nothing has been persisted, so there is
// nothing to undo.
func (s *Session) Discard() {
	s.discarded = true
	s.state = State{}
	s.warnings = nil
}
