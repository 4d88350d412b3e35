package notifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netolib/library-service/internal/core"
	"github.com/netolib/library-service/internal/mailer"
	"github.com/netolib/library-service/internal/notifier"
)

type stubLoanFinder struct {
	loans []core.Loan
	err   error
	calls int
}

func (s *stubLoanFinder) FindOverdue(_ context.Context) ([]core.Loan, error) {
	s.calls++

	return s.loans, s.err
}

func Test_NotifyOverdueLoans_SendsOneBatchMail(t *testing.T) {
	// arrange
	finder := &stubLoanFinder{loans: []core.Loan{
		{ID: 1, Costumer: "Fulano", CostumerEmail: "fulano@example.com"},
		{ID: 2, Costumer: "Ciclano", CostumerEmail: "ciclano@example.com"},
	}}
	recorder := mailer.NewRecorder()
	n := notifier.New(finder, recorder, nil)

	// act
	err := n.NotifyOverdueLoans(context.Background())

	// assert
	require.NoError(t, err)
	sent := recorder.Sent()
	require.Len(t, sent, 1, "all recipients get one batch mail")
	assert.Equal(t, "Livro com empréstimo em atraso", sent[0].Subject)
	assert.Equal(t, []string{"fulano@example.com", "ciclano@example.com"}, sent[0].To)
	assert.NotEmpty(t, sent[0].Body)
}

func Test_NotifyOverdueLoans_SkipsLoansWithoutEmail(t *testing.T) {
	// arrange
	finder := &stubLoanFinder{loans: []core.Loan{
		{ID: 1, Costumer: "Fulano", CostumerEmail: "fulano@example.com"},
		{ID: 2, Costumer: "Anonimo"},
	}}
	recorder := mailer.NewRecorder()
	n := notifier.New(finder, recorder, nil)

	// act
	err := n.NotifyOverdueLoans(context.Background())

	// assert
	require.NoError(t, err)
	sent := recorder.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"fulano@example.com"}, sent[0].To)
}

func Test_NotifyOverdueLoans_NoMailWhenNothingOverdue(t *testing.T) {
	// arrange
	finder := &stubLoanFinder{}
	recorder := mailer.NewRecorder()
	n := notifier.New(finder, recorder, nil)

	// act
	err := n.NotifyOverdueLoans(context.Background())

	// assert
	require.NoError(t, err)
	assert.Empty(t, recorder.Sent())
}

func Test_NotifyOverdueLoans_PropagatesSendError(t *testing.T) {
	// arrange
	finder := &stubLoanFinder{loans: []core.Loan{
		{ID: 1, CostumerEmail: "fulano@example.com"},
	}}
	recorder := mailer.NewRecorder()
	recorder.FailWith(errors.New("relay unavailable"))
	n := notifier.New(finder, recorder, nil)

	// act
	err := n.NotifyOverdueLoans(context.Background())

	// assert
	assert.EqualError(t, err, "relay unavailable")
}

func Test_NotifyOverdueLoans_CustomSubjectAndMessage(t *testing.T) {
	// arrange
	finder := &stubLoanFinder{loans: []core.Loan{
		{ID: 1, CostumerEmail: "fulano@example.com"},
	}}
	recorder := mailer.NewRecorder()
	n := notifier.New(finder, recorder, nil,
		notifier.WithSubject("Custom subject"),
		notifier.WithMessage("Custom message"),
	)

	// act
	err := n.NotifyOverdueLoans(context.Background())

	// assert
	require.NoError(t, err)
	sent := recorder.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Custom subject", sent[0].Subject)
	assert.Equal(t, "Custom message", sent[0].Body)
}

func Test_Run_StopsOnContextCancel(t *testing.T) {
	// arrange
	finder := &stubLoanFinder{}
	n := notifier.New(finder, mailer.NewRecorder(), nil, notifier.WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	// act
	cancel()

	// assert
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop on context cancel")
	}
}

func Test_Run_ExecutesOnTicker(t *testing.T) {
	// arrange
	finder := &stubLoanFinder{}
	n := notifier.New(finder, mailer.NewRecorder(), nil, notifier.WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// act
	n.Run(ctx)

	// assert
	assert.GreaterOrEqual(t, finder.calls, 1)
}
