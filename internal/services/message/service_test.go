package message_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtchat/internal/domain"
	"rtchat/internal/services/message"
	"rtchat/internal/services/reply"
	"rtchat/internal/testutil"
)

type failingReplier struct{}

func (failingReplier) Reply(context.Context, domain.InboundMessage) (string, error) {
	return "", errors.New("no answer")
}

func attached(t *testing.T, r domain.Replier) (*testutil.Transport, *message.Service) {
	t.Helper()
	tr := testutil.NewTransport()
	svc := message.New(tr, r, nil)
	require.True(t, svc.Attach(context.Background(), nil))
	return tr, svc
}

func TestDecode(t *testing.T) {
	in, err := message.Decode([]byte(`{"text":"hi","from":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", in.Text)
	assert.Contains(t, in.Fields, "from")

	in, err = message.Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "", in.Text)

	in, err = message.Decode([]byte(`{"text":42}`))
	require.NoError(t, err)
	assert.Equal(t, "", in.Text)

	for _, bad := range []string{``, `null`, `"hi"`, `[1,2]`, `7`, `{broken`} {
		_, err := message.Decode([]byte(bad))
		assert.ErrorIs(t, err, message.ErrMalformedPayload, "payload %q", bad)
	}
}

func TestOnMessage_RepliesWithGreeting(t *testing.T) {
	tr, _ := attached(t, reply.NewStatic(""))

	tr.Fire(domain.EventMessage, `{"text":"hi"}`)

	out := tr.Emitted(domain.EventMessage)
	require.Len(t, out, 1)
	assert.JSONEq(t, `{"text":"Hello! I'm a chatbot!"}`, string(out[0].Payload))
}

func TestOnMessage_MissingTextStillReplies(t *testing.T) {
	tr, _ := attached(t, reply.NewStatic(""))
	tr.Fire(domain.EventMessage, `{"user":"bob"}`)
	assert.Len(t, tr.Emitted(domain.EventMessage), 1)
}

func TestOnMessage_MalformedPayloadDropped(t *testing.T) {
	tr, _ := attached(t, reply.NewStatic(""))

	assert.NotPanics(t, func() {
		tr.Fire(domain.EventMessage, `"just a string"`)
		tr.Fire(domain.EventMessage, `[{"text":"hi"}]`)
		tr.Fire(domain.EventMessage, ``)
	})
	assert.Empty(t, tr.Emitted(""))
}

func TestOnMessage_ReplierErrorEmitsNothing(t *testing.T) {
	tr, _ := attached(t, failingReplier{})
	tr.Fire(domain.EventMessage, `{"text":"hi"}`)
	assert.Empty(t, tr.Emitted(""))
}

func TestOnMessage_InactiveGateDrops(t *testing.T) {
	tr := testutil.NewTransport()
	svc := message.New(tr, reply.NewStatic(""), nil)
	active := false
	require.True(t, svc.Attach(context.Background(), func() bool { return active }))

	tr.Fire(domain.EventMessage, `{"text":"hi"}`)
	assert.Empty(t, tr.Emitted(""))

	active = true
	tr.Fire(domain.EventMessage, `{"text":"hi"}`)
	assert.Len(t, tr.Emitted(domain.EventMessage), 1)
}

func TestAttach_RegistersOnce(t *testing.T) {
	tr, svc := attached(t, reply.NewStatic(""))
	assert.False(t, svc.Attach(context.Background(), nil))
	assert.Equal(t, 1, tr.Handlers(domain.EventMessage))

	tr.Fire(domain.EventMessage, `{"text":"hi"}`)
	assert.Len(t, tr.Emitted(domain.EventMessage), 1)
}

func TestReply_PropagatesTransportError(t *testing.T) {
	tr := testutil.NewTransport()
	boom := errors.New("socket gone")
	tr.EmitErr = boom
	svc := message.New(tr, reply.NewStatic(""), nil)

	err := svc.Reply(context.Background(), domain.InboundMessage{Text: "hi"})
	assert.ErrorIs(t, err, boom)
}
