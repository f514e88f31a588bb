package pubsub

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newTestTopic(t *testing.T) (*pstest.Server, *pubsub.Topic) {
	t.Helper()
	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	client, err := pubsub.NewClient(ctx, "kb-project", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.CreateTopic(ctx, "restaurant-updates")
	require.NoError(t, err)
	t.Cleanup(topic.Stop)
	return srv, topic
}

func TestPublishSendsJSONWithAttributes(t *testing.T) {
	srv, topic := newTestTopic(t)

	attrs := map[string]string{"event": "restaurant.updated", "slug": "roma"}
	id, err := New(topic).Publish(context.Background(), map[string]any{"slug": "roma", "items": 12}, attrs)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	require.JSONEq(t, `{"slug":"roma","items":12}`, string(msgs[0].Data))
	require.Equal(t, attrs, msgs[0].Attributes)
	require.Equal(t, id, msgs[0].ID)
}

func TestPublishRejectsUnencodablePayload(t *testing.T) {
	_, topic := newTestTopic(t)

	_, err := New(topic).Publish(context.Background(), map[string]any{"bad": make(chan int)}, nil)
	require.ErrorContains(t, err, "marshal payload")
}

func TestPublishWithoutTopic(t *testing.T) {
	_, err := New(nil).Publish(context.Background(), "x", nil)
	require.Error(t, err)
}
