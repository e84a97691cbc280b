package determinism

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestGuard() (*Guard, *bytes.Buffer) {
	var buf bytes.Buffer
	g := New()
	g.Logger = log.New(&buf, "", 0)
	return g, &buf
}

func TestUninstalledGuardDoesNotWarn(t *testing.T) {
	g, buf := newTestGuard()
	g.Now()
	assert.Empty(t, buf.String())
}

func TestInstalledGuardWarnsOnceOnNow(t *testing.T) {
	g, buf := newTestGuard()
	g.Install()
	g.Now()
	g.Now()
	g.Now()

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 1, lines)
	assert.Contains(t, buf.String(), "time.Now")
}

func TestDistinctSymbolsWarnSeparately(t *testing.T) {
	g, buf := newTestGuard()
	g.Install()
	g.Now()
	g.Monotonic()
	g.Intn(func(n int) int { return 0 }, 10)
	g.Float64(func() float64 { return 0 })

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 4, lines)
}

func TestUninstallResetsWarnedSet(t *testing.T) {
	g, buf := newTestGuard()
	g.Install()
	g.Now()
	g.Uninstall()
	assert.False(t, g.Installed())

	g.Install()
	g.Now()

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 2, lines)
}

func TestIntnAndFloat64DelegateToSuppliedSource(t *testing.T) {
	g, _ := newTestGuard()
	assert.Equal(t, 7, g.Intn(func(n int) int { return 7 }, 10))
	assert.Equal(t, 0.5, g.Float64(func() float64 { return 0.5 }))
}
