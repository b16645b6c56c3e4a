package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortlink/internal/config"
)

type APITestSuite struct {
	suite.Suite
	cancel context.CancelFunc
	done   chan error
	e      *httpexpect.Expect
}

func (suite *APITestSuite) SetupSuite() {
	t := suite.T()

	port := freePort(t)

	t.Setenv("PASSWORD", "hunter2")
	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DB_URL", filepath.Join(t.TempDir(), "urls.sqlite"))
	t.Setenv("SITE_URL", "https://sho.rt")
	t.Setenv("REDIRECT_METHOD", config.RedirectTemporary)

	cfg, err := config.Load("")
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel
	suite.done = make(chan error, 1)

	go func() {
		suite.done <- Run(ctx, cfg, "v1.2.3")
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	suite.Require().Eventually(func() bool {
		resp, err := http.Get(baseURL + "/api/version")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL: baseURL,
		Client: &http.Client{
			Jar:     httpexpect.NewCookieJar(),
			Timeout: 5 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Reporter: httpexpect.NewAssertReporter(t),
	})
}

func (suite *APITestSuite) TearDownSuite() {
	suite.cancel()

	select {
	case err := <-suite.done:
		suite.NoError(err)
	case <-time.After(15 * time.Second):
		suite.Fail("server did not stop")
	}
}

func (suite *APITestSuite) TestFlow() {
	suite.e.GET("/api/siteurl").
		Expect().
		Status(http.StatusOK).
		Text().IsEqual("https://sho.rt")

	suite.e.GET("/api/version").
		Expect().
		Status(http.StatusOK).
		Text().IsEqual("v1.2.3")

	suite.e.POST("/api/new").
		WithJSON(map[string]string{"shortlink": "docs-link", "longlink": "https://example.com/docs"}).
		Expect().
		Status(http.StatusUnauthorized)

	suite.e.POST("/api/login").
		WithText("wrong").
		Expect().
		Status(http.StatusUnauthorized).
		Text().IsEqual("Wrong password!")

	suite.e.POST("/api/login").
		WithText("hunter2").
		Expect().
		Status(http.StatusOK).
		Cookie("shortlink-session").Value().NotEmpty()

	suite.e.POST("/api/new").
		WithJSON(map[string]string{"shortlink": "docs-link", "longlink": "https://example.com/docs"}).
		Expect().
		Status(http.StatusCreated).
		Text().IsEqual("docs-link")

	suite.e.POST("/api/new").
		WithJSON(map[string]string{"shortlink": "docs-link", "longlink": "https://example.com/other"}).
		Expect().
		Status(http.StatusConflict).
		Text().IsEqual("Short URL not valid or already in use!")

	suite.e.GET("/docs-link").
		Expect().
		Status(http.StatusFound).
		Header("Location").IsEqual("https://example.com/docs")

	suite.e.PUT("/api/edit/docs-link").
		WithJSON(map[string]string{"longlink": "https://example.com/v2"}).
		Expect().
		Status(http.StatusCreated)

	list := suite.e.GET("/api/all").
		Expect().
		Status(http.StatusOK).
		JSON().Array()
	list.Length().IsEqual(1)
	list.Value(0).Object().
		HasValue("shortlink", "docs-link").
		HasValue("longlink", "https://example.com/v2").
		HasValue("hits", 1)

	key := suite.e.POST("/api/key").
		Expect().
		Status(http.StatusOK).
		Text().Raw()

	suite.e.DELETE("/api/logout").
		Expect().
		Status(http.StatusOK)

	suite.e.DELETE("/api/del/docs-link").
		WithHeader("X-Api-Key", key).
		Expect().
		Status(http.StatusOK).
		Text().IsEqual("Deleted docs-link")

	suite.e.GET("/docs-link").
		Expect().
		Status(http.StatusNotFound)

	suite.e.GET("/api/all").
		WithHeader("X-Api-Key", "not-the-key").
		Expect().
		Status(http.StatusUnauthorized)
}

func TestAPI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	suite.Run(t, new(APITestSuite))
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}
