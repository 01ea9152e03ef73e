package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuivia/internal/errors"
)

func TestKindMatching(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := fmt.Errorf("load categories: %w", errors.Transport(cause))

	require.ErrorIs(t, err, errors.ErrTransport)
	require.NotErrorIs(t, err, errors.ErrService)
	require.ErrorIs(t, err, cause)
	require.Equal(t, errors.KindTransport, errors.KindOf(err))
}

func TestErrorString(t *testing.T) {
	err := errors.New(errors.KindService, errors.WithStatus(404), errors.WithMessagef("not found: %s", "leaderboard"))
	require.Equal(t, "not found: leaderboard (status 404)", err.Error())

	err = errors.Validation("page %d out of range", 7)
	require.Equal(t, "page 7 out of range", err.Error())
	require.Equal(t, "validation", err.Kind.String())
}

func TestConvertForeignError(t *testing.T) {
	foreign := stderrors.New("boom")
	e := errors.Convert(foreign)
	require.Equal(t, errors.KindUnknown, e.Kind)
	require.ErrorIs(t, e, foreign)
	require.Equal(t, errors.KindUnknown, errors.KindOf(foreign))
}
