package linkedin

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func fixtureResponse(path string, statusCode int) (*http.Response, error) {
	file, err := os.ReadFile(path)

	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBuffer(file)),
	}, err
}

func Test_LinkedinClient_GetJobCards_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return strings.HasPrefix(req.URL.String(), searchURL) &&
			req.URL.Query().Get("keywords") == "golang engineer" &&
			req.URL.Query().Get("start") == "0"
	})).Return(fixtureResponse("testdata/search_results.html", 200))

	client := NewClient("test-agent")
	client.SetHTTPClient(mockClient)

	cards, err := client.GetJobCards(context.Background(), SearchParameters{
		Keywords: "golang engineer",
		Location: "United States",
	})
	require.NoError(t, err)

	require.Len(t, cards, 2)
	assert.Equal("Senior Backend Engineer", cards[0].Title)
	assert.Equal("Acme Corp", cards[0].Company)
	assert.Equal("Austin, TX (Remote)", cards[0].Location)
	assert.Equal("4012345678", cards[0].ExternalID)
	assert.Equal("https://www.linkedin.com/jobs/view/senior-backend-engineer-at-acme-corp-4012345678", cards[0].URL)
	require.NotNil(t, cards[0].PostedDate)
	assert.Equal("2026-08-18", cards[0].PostedDate.Format("2006-01-02"))

	assert.Equal("Globex", cards[1].Company)
	assert.Equal("4098765432", cards[1].ExternalID)
}

func Test_LinkedinClient_GetJobCards_InvalidParameters(t *testing.T) {

	client := NewClient("test-agent")
	_, err := client.GetJobCards(context.Background(), SearchParameters{})
	assert.Error(t, err)
}

func Test_LinkedinClient_GetJobDescription_ShouldBeSuccessful(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == jobViewURL+"4012345678"
	})).Return(fixtureResponse("testdata/job_page.html", 200))

	client := NewClient("test-agent")
	client.SetHTTPClient(mockClient)

	description, err := client.GetJobDescription(context.Background(), "4012345678")
	require.NoError(t, err)
	assert.Contains(t, description, "Senior Backend Engineer")
	assert.Contains(t, description, "Kubernetes")
}

func Test_LinkedinClient_DetectsSoftBlockStatus(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: 999,
		Body:       io.NopCloser(bytes.NewBufferString("blocked")),
	}, nil)

	client := NewClient("test-agent")
	client.SetHTTPClient(mockClient)

	_, err := client.GetJobCards(context.Background(), SearchParameters{Keywords: "golang"})
	assert.ErrorIs(t, err, ErrSoftBlock)
}

func Test_LinkedinClient_RetriesServerErrors(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: 500,
		Body:       io.NopCloser(bytes.NewBufferString("oops")),
	}, nil).Once()
	mockClient.On("Do", mock.Anything).Return(fixtureResponse("testdata/search_results.html", 200))

	client := NewClient("test-agent")
	client.SetHTTPClient(mockClient)
	client.retryDelay = time.Millisecond

	cards, err := client.GetJobCards(context.Background(), SearchParameters{Keywords: "golang"})
	require.NoError(t, err)
	assert.Len(t, cards, 2)
	mockClient.AssertNumberOfCalls(t, "Do", 2)
}

func Test_LinkedinClient_RotatesUserAgents(t *testing.T) {

	client := NewClient("test-agent")
	assert.Equal(t, "test-agent", client.nextUserAgent())
	assert.NotEqual(t, "test-agent", client.nextUserAgent())
}

func Test_LinkedinClient_DetectsLoginWall(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(fixtureResponse("testdata/login_wall.html", 200))

	client := NewClient("test-agent")
	client.SetHTTPClient(mockClient)

	_, err := client.GetJobDescription(context.Background(), "4012345678")
	assert.ErrorIs(t, err, ErrSoftBlock)
}

func Test_ExtractJobID(t *testing.T) {
	assert.Equal(t, "4012345678",
		extractJobID("https://www.linkedin.com/jobs/view/senior-backend-engineer-at-acme-corp-4012345678?refId=a"))
	assert.Equal(t, "", extractJobID("https://www.linkedin.com/company/acme-corp"))
}
