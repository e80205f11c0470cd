package ollama

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func fixtureResponse(path string) (*http.Response, error) {
	file, err := os.ReadFile(path)

	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBuffer(file)),
	}, err
}

func Test_OllamaClient_IsAvailable_ShouldMatchModelTag(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "http://localhost:11434/api/tags"
	})).Return(fixtureResponse("testdata/tags_response.json"))

	client := NewClient("http://localhost:11434", "llama3.2", Options{})
	client.SetHTTPClient(mockClient)

	assert.True(client.IsAvailable(context.Background()))
}

func Test_OllamaClient_IsAvailable_UnknownModel(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(fixtureResponse("testdata/tags_response.json"))

	client := NewClient("http://localhost:11434", "qwen2.5", Options{})
	client.SetHTTPClient(mockClient)

	assert.False(client.IsAvailable(context.Background()))
}

func Test_OllamaClient_GenerateResponse_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "http://localhost:11434/api/chat" && req.Method == http.MethodPost
	})).Return(fixtureResponse("testdata/chat_response.json"))

	client := NewClient("http://localhost:11434", "llama3.2", Options{Temperature: 0.3, NumPredict: 150})
	client.SetHTTPClient(mockClient)

	resp, err := client.GenerateResponse(context.Background(), "Rewrite this bullet")
	assert.NoError(err)
	assert.Contains(resp, "Engineered Go microservices")
}

func Test_OllamaClient_GenerateResponse_ServerErrorIsReturned(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: 404,
		Body:       io.NopCloser(bytes.NewBufferString("model not found")),
	}, nil)

	client := NewClient("http://localhost:11434", "llama3.2", Options{})
	client.SetHTTPClient(mockClient)

	_, err := client.GenerateResponse(context.Background(), "Rewrite this bullet")
	assert.Error(err)
}
