package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	getOut  *ssm.GetParameterOutput
	getErr  error
	lastIn  *ssm.GetParameterInput
	invoked int
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.lastIn = in
	f.invoked++
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func paramOut(value string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(value), Type: types.ParameterTypeSecureString,
	}}
}

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: paramOut(`{"k":"v"}`)}
	client, err := New(api)
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), " p ")
	require.NoError(t, err)
	require.Equal(t, `{"k":"v"}`, v)
	require.Equal(t, "p", *api.lastIn.Name)
	require.True(t, *api.lastIn.WithDecryption)
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p"), Value: nil}}}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_ApiError(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("boom")}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestIsReference(t *testing.T) {
	require.True(t, IsReference("ssm:/kb-assistant/openai-token"))
	require.True(t, IsReference("  ssm:/x"))
	require.False(t, IsReference("sk-literal"))
	require.False(t, IsReference(""))
}

func TestResolveSecret_LiteralIsReturnedWithoutLookup(t *testing.T) {
	api := &fakeAPI{}
	client, err := New(api)
	require.NoError(t, err)

	v, err := ResolveSecret(context.Background(), client, " sk-literal ")
	require.NoError(t, err)
	require.Equal(t, "sk-literal", v)
	require.Zero(t, api.invoked)
}

func TestResolveSecret_JSONToken(t *testing.T) {
	api := &fakeAPI{getOut: paramOut(`{"token":"sk-from-json"}`)}
	client, err := New(api)
	require.NoError(t, err)

	v, err := ResolveSecret(context.Background(), client, "ssm:/kb-assistant/openai-token")
	require.NoError(t, err)
	require.Equal(t, "sk-from-json", v)
	require.Equal(t, "/kb-assistant/openai-token", *api.lastIn.Name)
}

func TestResolveSecret_PlainValue(t *testing.T) {
	client, err := New(&fakeAPI{getOut: paramOut("sk-plain\n")})
	require.NoError(t, err)

	v, err := ResolveSecret(context.Background(), client, "ssm:/kb-assistant/openai-token")
	require.NoError(t, err)
	require.Equal(t, "sk-plain", v)
}

func TestResolveSecret_Errors(t *testing.T) {
	cases := []struct {
		name   string
		getter Getter
		value  string
		want   string
	}{
		{name: "nil getter", getter: nil, value: "ssm:/x", want: "nil"},
		{name: "empty name", getter: &Client{api: &fakeAPI{}}, value: "ssm:  ", want: "names no parameter"},
		{name: "lookup failure", getter: &Client{api: &fakeAPI{getErr: errors.New("ssm unavailable")}}, value: "ssm:/x", want: "ssm unavailable"},
		{name: "malformed json", getter: &Client{api: &fakeAPI{getOut: paramOut(`{"broken`)}}, value: "ssm:/x", want: "unmarshal"},
		{name: "missing token field", getter: &Client{api: &fakeAPI{getOut: paramOut(`{"other":"v"}`)}}, value: "ssm:/x", want: "empty secret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveSecret(context.Background(), tc.getter, tc.value)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}
