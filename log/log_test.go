package log_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/PolyhedraZK/expander-go/log"
)

func TestLevelRoundTrip(t *testing.T) {
	c := qt.New(t)
	for _, level := range []string{
		log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError,
	} {
		log.Init(level, "stderr")
		c.Assert(log.Level(), qt.Equals, level)
	}
}

func TestInvalidLevelPanics(t *testing.T) {
	c := qt.New(t)
	c.Assert(func() { log.Init("verbose", "stderr") }, qt.PanicMatches, ".*invalid log level.*")
}
