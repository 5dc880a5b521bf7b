package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/domain"
)

const (
	JSONRPC_VERSION      = "2.0"
	JSONRPC_CONTENT_TYPE = "application/json"
)

// RPCClient sends a single JSON-RPC 2.0 request and returns the raw result
//
//go:generate mockgen -source=rpc.go -destination=../../mocks/rpc_client.go -package=mocks -mock_names=RPCClient=MockRPCClient
type RPCClient interface {
	// Call invokes method with params. It never retries and never caches.
	Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcErrorObject `json:"error"`
}

type rpcErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type rpcClient struct {
	url    string
	http   adapter.HTTPClient
	json   adapter.JSON
	nextID atomic.Uint64
}

// NewRPCClient creates a JSON-RPC client for the provider at url
func NewRPCClient(url string, httpClient adapter.HTTPClient, jsonAdapter adapter.JSON) RPCClient {
	return &rpcClient{
		url:  url,
		http: httpClient,
		json: jsonAdapter,
	}
}

// Call sends one JSON-RPC request. Transport failures, non-2xx statuses and non-JSON
// bodies are returned as *domain.RPCTransportError; an error member in the response
// is returned as *domain.RPCProtocolError.
func (c *rpcClient) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}

	body, err := c.json.Marshal(rpcRequest{
		JSONRPC: JSONRPC_VERSION,
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	respBody, err := c.http.Post(ctx, c.url, JSONRPC_CONTENT_TYPE, bytes.NewReader(body))
	if err != nil {
		var statusErr *adapter.HTTPStatusError
		if errors.As(err, &statusErr) {
			return nil, &domain.RPCTransportError{
				Method:     method,
				StatusCode: statusErr.StatusCode,
				Message:    string(statusErr.Body),
			}
		}
		return nil, &domain.RPCTransportError{Method: method, Err: err}
	}

	var resp rpcResponse
	if err := c.json.Unmarshal(respBody, &resp); err != nil {
		return nil, &domain.RPCTransportError{
			Method:  method,
			Message: "response is not valid JSON: " + truncate(string(respBody), 200),
			Err:     err,
		}
	}

	if resp.Error != nil {
		return nil, &domain.RPCProtocolError{
			Method:  method,
			Code:    resp.Error.Code,
			Message: resp.Error.Message,
			Data:    string(resp.Error.Data),
		}
	}

	if len(resp.Result) == 0 {
		return nil, &domain.RPCProtocolError{Method: method, Message: "response has neither result nor error"}
	}

	return resp.Result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
