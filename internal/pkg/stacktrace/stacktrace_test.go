package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/assetly/internal/otp/usecase.(*Usecase).Issue(...)
	/src/assetly/internal/otp/usecase/issue.go:42 +0x1a
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220
github.com/shandysiswandi/assetly/internal/pkg/router.Chain.func1()
	/src/assetly/internal/pkg/router/chain.go:11`)

	// Act
	paths := InternalPaths(stack)

	// Assert
	assert.Equal(t, []string{
		"internal/otp/usecase/issue.go:42",
		"internal/pkg/router/chain.go:11",
	}, paths)
}

func TestInternalPaths_NoInternalFrames(t *testing.T) {
	assert.Empty(t, InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:10")))
}
