package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketDash/pkg/config"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (r recordingCloser) Close() error {
	*r.order = append(*r.order, r.name)
	return r.err
}

func TestRunClosesResourcesInOrder(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.ShutdownTimeout = time.Second

	var order []string
	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0), xhttp.WithLogger(applogger.Nop()))
	app := New(cfg, applogger.Nop(), srv,
		WithCloser("publisher", recordingCloser{name: "publisher", order: &order, err: errors.New("flush failed")}),
		WithCloser("postgres", recordingCloser{name: "postgres", order: &order}),
		WithCloser("absent", nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, []string{"publisher", "postgres"}, order)
}
