package battle

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/decred/slog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(catalog QuizCatalog) (*Registry, *countingAudit) {
	audit := &countingAudit{}
	return NewRegistry(Deps{Catalog: catalog, Audit: audit}, RegistryConfig{}), audit
}

func TestRegistryCreateAndGet(t *testing.T) {
	r, audit := newTestRegistry(NewStaticCatalog(questionBank(3)))

	s, err := r.Create(context.Background(), testHost, testSettings())
	require.NoError(t, err)
	assert.Len(t, s.Code, 6)
	assert.Equal(t, StateWaiting, s.State())
	assert.Len(t, audit.sessions, 1)

	got, err := r.Get(s.Code)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = r.Get("NOPE00")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, "session_not_found", CodeOf(err))
}

func TestRegistryCreateRejects(t *testing.T) {
	r, _ := newTestRegistry(NewStaticCatalog(questionBank(3)))

	bad := testSettings()
	bad.EliminationRatePercent = 100
	_, err := r.Create(context.Background(), testHost, bad)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	bad = testSettings()
	bad.MaxParticipants = 3
	_, err = r.Create(context.Background(), testHost, bad)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	bad = testSettings()
	negative := decimal.NewFromInt(-5)
	bad.PrizePool = &negative
	_, err = r.Create(context.Background(), testHost, bad)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	unknownQuiz := testSettings()
	unknownQuiz.QuizID = 99
	_, err = r.Create(context.Background(), testHost, unknownQuiz)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	assert.Zero(t, r.Len())

	_, err = NewRegistry(Deps{}, RegistryConfig{}).Create(context.Background(), testHost, testSettings())
	assert.ErrorIs(t, err, ErrCatalog)
}

func TestRegistryCodesAreUnique(t *testing.T) {
	r, _ := newTestRegistry(NewStaticCatalog(questionBank(3)))
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		s, err := r.Create(context.Background(), testHost, testSettings())
		require.NoError(t, err)
		_, dup := seen[s.Code]
		require.False(t, dup, "duplicate code %s", s.Code)
		seen[s.Code] = struct{}{}
		for _, c := range s.Code {
			assert.True(t, strings.ContainsRune(codeChars, c))
		}
	}
	assert.Equal(t, 200, r.Len())
}

func TestRegistryList(t *testing.T) {
	r, _ := newTestRegistry(NewStaticCatalog(questionBank(3)))
	base := time.Now()
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := r.Create(context.Background(), 1, testSettings())
	require.NoError(t, err)
	second, err := r.Create(context.Background(), 2, testSettings())
	require.NoError(t, err)
	third, err := r.Create(context.Background(), 1, testSettings())
	require.NoError(t, err)

	all := r.List(0)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.Code, second.Code, first.Code}, []string{all[0].Code, all[1].Code, all[2].Code})

	mine := r.List(1)
	require.Len(t, mine, 2)
	assert.Equal(t, third.Code, mine[0].Code)
}

func TestRegistrySweep(t *testing.T) {
	r, _ := newTestRegistry(NewStaticCatalog(questionBank(3)))
	ctx := context.Background()

	done, err := r.Create(ctx, testHost, testSettings())
	require.NoError(t, err)
	require.True(t, done.Abort(EndAborted))

	idle, err := r.Create(ctx, testHost, testSettings())
	require.NoError(t, err)

	busy, err := r.Create(ctx, testHost, testSettings())
	require.NoError(t, err)
	_, err = busy.Join(JoinRequest{Pseudo: "waiting-player"})
	require.NoError(t, err)

	assert.Zero(t, r.Sweep())

	now := time.Now()
	r.now = func() time.Time { return now.Add(11 * time.Minute) }
	assert.Equal(t, 1, r.Sweep())
	_, err = r.Get(done.Code)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	r.now = func() time.Time { return now.Add(31 * time.Minute) }
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, StateCompleted, idle.State())

	_, err = r.Get(busy.Code)
	assert.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRemove(t *testing.T) {
	r, _ := newTestRegistry(NewStaticCatalog(questionBank(3)))
	s, err := r.Create(context.Background(), testHost, testSettings())
	require.NoError(t, err)

	assert.True(t, r.Remove(s.Code))
	assert.False(t, r.Remove(s.Code))
	assert.Equal(t, StateCompleted, s.State())
	assert.Zero(t, r.Len())
}

func TestRegistryRunShutsDownOnCancel(t *testing.T) {
	r, _ := newTestRegistry(NewStaticCatalog(questionBank(3)))
	s, err := r.Create(context.Background(), testHost, testSettings())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx, 10*time.Millisecond) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	<-s.Done()
	assert.Equal(t, StateCompleted, s.State())
}

func TestRegistryCreateFailsWithoutEntropy(t *testing.T) {
	r, audit := newTestRegistry(NewStaticCatalog(questionBank(3)))
	r.entropy = iotest.ErrReader(errors.New("entropy exhausted"))

	s, err := r.Create(context.Background(), testHost, testSettings())
	assert.Nil(t, s)
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Zero(t, r.Len())
	assert.Empty(t, audit.sessions)
}

func TestSweepKeepsSessionJoinedAfterExpiryCheck(t *testing.T) {
	r, _ := newTestRegistry(NewStaticCatalog(questionBank(3)))
	s, err := r.Create(context.Background(), testHost, testSettings())
	require.NoError(t, err)

	now := time.Now()
	r.now = func() time.Time { return now.Add(31 * time.Minute) }
	require.True(t, r.expired(s, r.now()))

	// the player arrives between the expiry check and the eviction
	_, err = s.Join(JoinRequest{Pseudo: "just-in-time"})
	require.NoError(t, err)
	assert.False(t, s.abortIfIdle())
	assert.Equal(t, StateWaiting, s.State())

	assert.Zero(t, r.Sweep())
	_, err = r.Get(s.Code)
	assert.NoError(t, err)

	empty, err := r.Create(context.Background(), testHost, testSettings())
	require.NoError(t, err)
	assert.True(t, empty.abortIfIdle())
	assert.False(t, empty.abortIfIdle())
	_, err = empty.Join(JoinRequest{Pseudo: "too-late"})
	assert.ErrorIs(t, err, ErrNotJoinable)
}

func TestRegistryLogsUnderItsOwnSubsystem(t *testing.T) {
	var buf bytes.Buffer
	backend := slog.NewBackend(&buf)
	r := NewRegistry(Deps{
		Catalog: NewStaticCatalog(questionBank(3)),
		Log:     backend.Logger("BTLE"),
	}, RegistryConfig{Log: backend.Logger("REGY")})

	s, err := r.Create(context.Background(), testHost, testSettings())
	require.NoError(t, err)
	defer s.Abort(EndAborted)

	assert.Contains(t, buf.String(), "REGY: session "+s.Code+" created")
	assert.NotContains(t, buf.String(), "BTLE: session "+s.Code+" created")
}
