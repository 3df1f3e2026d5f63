package rabbitmq

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndConsumeCleanupTask(t *testing.T) {
	if os.Getenv("SKIP_RABBITMQ_TESTS") != "" {
		t.Skip("Skipping RabbitMQ tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	amqpURI, cleanup := amqpURIForTest(ctx, t)
	defer cleanup()

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := SetupChannel(conn, []QueueConfig{CleanupQueue})
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	type task struct {
		URL string `json:"url"`
	}

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	received := make([]string, 0)

	handler := func(body []byte) error {
		var got task
		if err := json.Unmarshal(body, &got); err != nil {
			return err
		}
		mu.Lock()
		received = append(received, got.URL)
		mu.Unlock()
		wg.Done()
		return nil
	}

	require.NoError(t, ConsumeMessages(ctx, ch, CleanupQueue.QueueName, handler))

	urls := []string{
		"https://media.example.com/media/2026/01/old-avatar.png",
		"https://media.example.com/media/2026/01/old-cover.png",
	}
	for _, url := range urls {
		require.NoError(t, PublishMessage(ch, MediaExchange, CleanupQueue.RoutingKey, task{URL: url}))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("timed out waiting for messages")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, urls, received)
}
