package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/gatehouse/internal/api"
	"github.com/phrazzld/gatehouse/internal/api/errorhandler"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

type fakeProbe struct {
	enabled bool
	err     error
}

func (p fakeProbe) Enabled() bool                { return p.enabled }
func (p fakeProbe) Ping(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		db   api.DatabaseProbe
		want string
	}{
		{name: "no database", db: nil, want: api.DatabaseDisabled},
		{name: "database not configured", db: fakeProbe{enabled: false}, want: api.DatabaseDisabled},
		{name: "database reachable", db: fakeProbe{enabled: true}, want: api.DatabaseUp},
		{name: "database unreachable", db: fakeProbe{enabled: true, err: errors.New("connection refused")}, want: api.DatabaseDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := logger.NewTestLogger()
			funnel := errorhandler.New(log, nil)

			rec := httptest.NewRecorder()
			funnel.Wrap(api.NewHealthHandler(tt.db).Health)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"status":"ok","database":"`+tt.want+`"}`, rec.Body.String())
		})
	}
}
