package battle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ string, ev Event) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

func (p *recordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) ofType(typ string) []Event {
	var out []Event
	for _, ev := range p.Events() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// waitFor blocks until an event of typ satisfying match was published.
func (p *recordingPublisher) waitFor(t *testing.T, typ string, match func(Event) bool) Event {
	t.Helper()
	var found Event
	require.Eventually(t, func() bool {
		for _, ev := range p.ofType(typ) {
			if match == nil || match(ev) {
				found = ev
				return true
			}
		}
		return false
	}, 3*time.Second, 5*time.Millisecond, "no %s event", typ)
	return found
}

type countingAudit struct {
	mu       sync.Mutex
	rounds   []RoundRecord
	sessions []SessionRecord
}

func (a *countingAudit) RecordRound(rec RoundRecord) {
	a.mu.Lock()
	a.rounds = append(a.rounds, rec)
	a.mu.Unlock()
}

func (a *countingAudit) RecordSession(rec SessionRecord) {
	a.mu.Lock()
	a.sessions = append(a.sessions, rec)
	a.mu.Unlock()
}

func (a *countingAudit) roundCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rounds)
}

type failingCatalog struct {
	*StaticCatalog
	failFrom int
}

func (c failingCatalog) NextQuestion(ctx context.Context, code string, round int) (Question, error) {
	if round >= c.failFrom {
		return Question{}, ErrQuestionNotFound
	}
	return c.StaticCatalog.NextQuestion(ctx, code, round)
}

// gatedCatalog blocks the question of one round until release is closed.
type gatedCatalog struct {
	*StaticCatalog
	round   int
	entered chan struct{}
	release chan struct{}
}

func newGatedCatalog(questions []Question, round int) gatedCatalog {
	return gatedCatalog{
		StaticCatalog: NewStaticCatalog(questions),
		round:         round,
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (c gatedCatalog) NextQuestion(ctx context.Context, code string, round int) (Question, error) {
	if round == c.round {
		close(c.entered)
		select {
		case <-c.release:
		case <-ctx.Done():
			return Question{}, ctx.Err()
		}
	}
	return c.StaticCatalog.NextQuestion(ctx, code, round)
}

func (c gatedCatalog) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-c.entered:
	case <-time.After(time.Second):
		t.Fatal("catalog was not asked for the gated round")
	}
}

// singleQuestion has options 1..4 with id+1 correct, worth 100 points.
func singleQuestion(id uint) Question {
	base := id * 10
	return Question{
		ID:               id,
		Type:             QuestionSingle,
		Text:             fmt.Sprintf("question %d", id),
		TimeLimitSeconds: 30,
		Points:           100,
		Answers: []AnswerOption{
			{ID: base + 1, Text: "a", IsCorrect: true},
			{ID: base + 2, Text: "b"},
			{ID: base + 3, Text: "c"},
			{ID: base + 4, Text: "d"},
		},
	}
}

func questionBank(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = singleQuestion(uint(i + 1))
	}
	return qs
}

func right(q Question) []uint { return []uint{q.ID*10 + 1} }
func wrong(q Question) []uint { return []uint{q.ID*10 + 2} }

func testSettings() Settings {
	return Settings{
		Title:                  "friday battle",
		MaxParticipants:        10,
		EliminationRatePercent: 25,
		TimePerQuestionSeconds: 30,
		TotalQuestions:         3,
	}
}

type fixture struct {
	registry  *Registry
	session   *Session
	publisher *recordingPublisher
	audit     *countingAudit
}

const testHost uint = 7

func newFixture(t *testing.T, settings Settings, catalog QuizCatalog) *fixture {
	t.Helper()
	f := &fixture{publisher: &recordingPublisher{}, audit: &countingAudit{}}
	f.registry = NewRegistry(Deps{
		Catalog:   catalog,
		Publisher: f.publisher,
		Audit:     f.audit,
	}, RegistryConfig{})

	s, err := f.registry.Create(context.Background(), testHost, settings)
	require.NoError(t, err)
	f.session = s
	t.Cleanup(func() { s.Abort(EndAborted) })
	return f
}

func (f *fixture) join(t *testing.T, n int) []Participant {
	t.Helper()
	out := make([]Participant, n)
	for i := range out {
		p, err := f.session.Join(JoinRequest{Pseudo: fmt.Sprintf("player-%d", i+1)})
		require.NoError(t, err)
		out[i] = p
	}
	return out
}

func (f *fixture) answer(t *testing.T, p Participant, round int, ids []uint) {
	t.Helper()
	require.NoError(t, f.session.SubmitAnswer(AnswerRequest{ParticipantID: p.ID, Round: round, AnswerIDs: ids}))
}

func roundSummary(round int) func(Event) bool {
	return func(ev Event) bool {
		return ev.Data.(RoundSummaryEvent).Round == round
	}
}
