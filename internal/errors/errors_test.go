package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocWebError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DocWebError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
		{
			name:     "context is rendered in key order",
			err:      ConfigSyntax("site.ini", 12, "unknown key"),
			expected: "config (fatal): unknown key [file=site.ini line=12]",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestJobFailed_NamesCommand(t *testing.T) {
	err := JobFailed("nim doc lib/system.nim", 1, fmt.Errorf("exit status 1"))

	assert.Equal(t, CategoryJob, err.Category)
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Error(), "nim doc lib/system.nim")
	assert.Equal(t, 1, err.Context["exit_code"])
}

func TestCategoryHelpers_SeeThroughWrapping(t *testing.T) {
	base := ResourceError("/out/news.xml", "create", fmt.Errorf("permission denied"))
	wrapped := fmt.Errorf("website stage: %w", base)

	assert.True(t, IsCategory(wrapped, CategoryFileSystem))
	assert.False(t, IsRetryable(wrapped))
	assert.Equal(t, CategoryFileSystem, GetCategory(wrapped))
	assert.Equal(t, CategoryInternal, GetCategory(stdErrors.New("plain")))

	dwe, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "/out/news.xml", dwe.Context["path"])
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	assert.Equal(t, 0, adapter.ExitCodeFor(nil))
	assert.Equal(t, 7, adapter.ExitCodeFor(ConfigSyntax("a.ini", 1, "bad")))
	assert.Equal(t, 11, adapter.ExitCodeFor(JobFailed("cmd", 2, nil)))
	assert.Equal(t, 11, adapter.ExitCodeFor(ResourceError("p", "open", nil)))
	assert.Equal(t, 2, adapter.ExitCodeFor(ValidationFailed("mode", "unknown")))
	assert.Equal(t, 10, adapter.ExitCodeFor(InternalError("boom", nil)))
	assert.Equal(t, 1, adapter.ExitCodeFor(stdErrors.New("plain")))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var stderr bytes.Buffer
	code := -1
	adapter := NewCLIErrorAdapter(false, nil)
	adapter.stderr = &stderr
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(JobFailed("nim rst2html doc/manual.rst", 1, nil))

	assert.Equal(t, 11, code)
	assert.Equal(t, "job: external command failed [command=nim rst2html doc/manual.rst exit_code=1]\n", stderr.String())
}

func TestCLIErrorAdapter_FormatConfigErrorWithoutCategoryPrefix(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	msg := adapter.FormatError(ConfigSyntax("web/site.ini", 3, "unknown key in [project]: colour"))

	assert.Equal(t, "unknown key in [project]: colour [file=web/site.ini line=3]", msg)
}
