package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ReferencePrefix marks a configuration value that names an SSM parameter
// instead of carrying the secret itself, e.g. "ssm:/kb-assistant/openai-token".
const ReferencePrefix = "ssm:"

// ssmAPI is the minimal AWS SSM interface required by Client.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter is the interface that wraps GetParameter.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// tokenPayload is the JSON shape a secret parameter may hold.
type tokenPayload struct {
	Token string `json:"token"`
}

// Client wraps an AWS SSM API for parameter retrieval.
type Client struct {
	api ssmAPI
}

// New creates a Client with the given SSM API implementation.
func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// IsReference reports whether value points at a parameter rather than holding
// a literal secret.
func IsReference(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), ReferencePrefix)
}

// ResolveSecret returns value unchanged unless it is a reference, in which case
// the named parameter is fetched. Parameter values may be a JSON object of the
// form {"token":"..."} or the bare secret.
func ResolveSecret(ctx context.Context, getter Getter, value string) (string, error) {
	value = strings.TrimSpace(value)
	if !IsReference(value) {
		return value, nil
	}
	if getter == nil {
		return "", errors.New("paramstore: getter is nil")
	}
	name := strings.TrimSpace(strings.TrimPrefix(value, ReferencePrefix))
	if name == "" {
		return "", errors.New("paramstore: reference names no parameter")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("paramstore: resolve secret: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("paramstore: unmarshal secret value as JSON: %w", err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", fmt.Errorf("paramstore: parameter %q holds an empty secret", name)
	}
	return raw, nil
}
