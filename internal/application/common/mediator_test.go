package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRequest struct{ Value string }

type pingHandler struct{}

func (h *pingHandler) Handle(ctx context.Context, request Request) (Response, error) {
	req := request.(*pingRequest)
	return "pong:" + req.Value, nil
}

func TestMediator_Dispatch(t *testing.T) {
	m := NewMediator()
	require.NoError(t, RegisterHandler[*pingRequest](m, &pingHandler{}))

	result, err := m.Send(context.Background(), &pingRequest{Value: "a"})
	require.NoError(t, err)
	assert.Equal(t, "pong:a", result)
}

func TestMediator_UnregisteredType(t *testing.T) {
	m := NewMediator()

	_, err := m.Send(context.Background(), &pingRequest{})
	assert.Error(t, err)
}

func TestMediator_DuplicateRegistration(t *testing.T) {
	m := NewMediator()
	require.NoError(t, RegisterHandler[*pingRequest](m, &pingHandler{}))
	assert.Error(t, RegisterHandler[*pingRequest](m, &pingHandler{}))
}

func TestMediator_NilRequest(t *testing.T) {
	m := NewMediator()
	_, err := m.Send(context.Background(), nil)
	assert.Error(t, err)
}
