package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/podenv"
	"github.com/pitabwire/podenv/locale"
)

type CommandTestSuite struct {
	suite.Suite
	built  int
	out    bytes.Buffer
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, &CommandTestSuite{})
}

func (s *CommandTestSuite) SetupTest() {
	s.built = 0
	s.out.Reset()
	s.stdout.Reset()
	s.stderr.Reset()
	locale.SetTestMode(false)

	environment = func() *podenv.Environment {
		s.built++
		_, env := podenv.NewEnvironment(context.Background(),
			podenv.WithOut(&s.out),
			podenv.WithVars(map[string]string{"Shell": "/bin/sh"}))
		return env
	}
}

func (s *CommandTestSuite) TearDownTest() {
	environment = podenv.Current
}

func (s *CommandTestSuite) TestUnknownCommandSkipsEnvironment() {
	s.Equal(1, run([]string{"bogus"}, &s.stdout, &s.stderr))
	s.Contains(s.stderr.String(), `unknown command: "bogus"`)
	s.Zero(s.built)
}

func (s *CommandTestSuite) TestNoCommand() {
	s.Equal(1, run(nil, &s.stdout, &s.stderr))
	s.Contains(s.stderr.String(), "Commands:")
	s.Zero(s.built)
}

func (s *CommandTestSuite) TestHelpAndVersion() {
	s.Equal(0, run([]string{"help"}, &s.stdout, &s.stderr))
	s.Contains(s.stdout.String(), "Commands:")

	s.Equal(0, run([]string{"version"}, &s.stdout, &s.stderr))
	s.Contains(s.stdout.String(), "github.com/pitabwire/podenv")
	s.Zero(s.built)
}

func (s *CommandTestSuite) TestVars() {
	s.Equal(0, run([]string{"vars"}, &s.stdout, &s.stderr))
	s.Equal("Shell=/bin/sh\n", s.out.String())
	s.Equal(1, s.built)
}

func (s *CommandTestSuite) TestConfigDefault() {
	s.Equal(0, run([]string{"config", "pod", "timeout", "--default", "10s"}, &s.stdout, &s.stderr))
	s.Equal("10s\n", s.out.String())
}

func (s *CommandTestSuite) TestLocaleFallsBackToKey() {
	s.Equal(0, run([]string{"locale", "pod", "greeting", "--locale", "fr-CA"}, &s.stdout, &s.stderr))
	s.Equal("pod::greeting\n", s.out.String())
}

func (s *CommandTestSuite) TestMissingArguments() {
	s.Equal(1, run([]string{"config", "pod"}, &s.stdout, &s.stderr))
	s.Contains(s.stderr.String(), "invalid arguments")
}
