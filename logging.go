package tmi

import (
	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

// newDefaultLogger returns the logger an AsyncRunner uses when none is
// supplied: a nil-safe field wired to logrus plus the nested formatter for
// readable component/channel/state prefixes.
func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&formatter.Formatter{
		HideKeys:    true,
		FieldsOrder: []string{"component", "channel", "state"},
	})
	return l
}
