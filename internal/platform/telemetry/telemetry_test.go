// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	tracing, err := Init(context.Background(), "memberdesk", "")
	require.NoError(t, err)
	assert.False(t, tracing.Enabled)
	assert.NoError(t, tracing.Shutdown(context.Background()))

	called := false
	handler := tracing.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestExporterOptions(t *testing.T) {
	options, err := exporterOptions("http://collector:4318/v1/traces")
	require.NoError(t, err)
	assert.Len(t, options, 3)

	options, err = exporterOptions("collector:4318")
	require.NoError(t, err)
	assert.Len(t, options, 1)

	_, err = exporterOptions("http:///missing-host")
	assert.Error(t, err)
}
