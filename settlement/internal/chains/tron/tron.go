package tron

import (
	"context"
	"fmt"

	"github.com/fbsobreira/gotron-sdk/pkg/client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const DEFAULT_URL = "grpc.nile.trongrid.io:50051"

type Client struct {
	grpc *client.GrpcClient
}

func Connect(ctx context.Context, url, apiKey string) (*Client, error) {
	if url == "" {
		url = DEFAULT_URL
	}

	grpcClient := client.NewGrpcClient(url)
	if apiKey != "" {
		if err := grpcClient.SetAPIKey(apiKey); err != nil {
			return nil, fmt.Errorf("tron api key: %w", err)
		}
	}

	if err := grpcClient.Start(grpc.WithTransportCredentials(insecure.NewCredentials())); err != nil {
		return nil, fmt.Errorf("tron grpc start: %w", err)
	}

	c := &Client{grpc: grpcClient}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Ping fetches the head block. The grpc client takes no context, so the call
// is abandoned, not cancelled, when ctx ends first.
func (c *Client) Ping(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := c.grpc.GetNowBlock()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("tron now block: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Close() {
	c.grpc.Stop()
}
