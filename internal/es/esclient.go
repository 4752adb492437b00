package es

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"
)

type Config struct {
	URL      string
	Username string
	Password string
}

// NewClient connects and verifies the cluster answers the info call.
func NewClient(cfg Config, l *slog.Logger) (*elasticsearch.Client, error) {
	l.Info("es_connect", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: create client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info returned %s: %s", res.Status(), body)
	}

	l.Info("es_connected")
	return client, nil
}
