package container

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain checks that none of the goroutines this package spawns (Future
// follow, PromiseMap expiry, ResourcePool waiters) leak past the test
// suite, the way the teacher's server/background tests do.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
