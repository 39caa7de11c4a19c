package loader_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/podenv/loader"
	"github.com/pitabwire/podenv/props"
)

type LoaderTestSuite struct {
	suite.Suite
	source loader.MapSource
	ldr    *loader.Loader
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, &LoaderTestSuite{})
}

func (s *LoaderTestSuite) SetupTest() {
	s.source = loader.MapSource{}
	s.source.Put("pod", "config.props", map[string]string{"timeout": "30s"})

	ldr, err := loader.New(s.T().Context(), s.source, loader.WithWorkers(2))
	s.Require().NoError(err)
	s.ldr = ldr
}

func (s *LoaderTestSuite) TearDownTest() {
	s.ldr.Close()
}

func (s *LoaderTestSuite) TestRefreshKeepsIdentity() {
	table := props.NewTable()

	s.Require().NoError(s.ldr.Refresh(s.T().Context(), "pod", "config.props", table))
	s.Equal("30s", table.GetOr("timeout", ""))
	s.True(table.Loaded())

	s.source.Put("pod", "config.props", map[string]string{"timeout": "45s"})
	held := table
	s.Require().NoError(s.ldr.Refresh(s.T().Context(), "pod", "config.props", table))
	s.Same(held, table)
	s.Equal("45s", held.GetOr("timeout", ""))
}

func (s *LoaderTestSuite) TestRefreshMissingLoadsEmpty() {
	table := props.NewTable()
	table.Set("stale", "x")

	s.Require().NoError(s.ldr.Refresh(s.T().Context(), "pod", "locale/fr.props", table))
	s.Equal(0, table.Len())
	s.True(table.Loaded())
}

func (s *LoaderTestSuite) TestNotifyLoadsInBackground() {
	table := props.NewTable()

	s.ldr.Notify("pod", "config.props", table, time.Minute)
	s.ldr.Wait()

	s.Equal("30s", table.GetOr("timeout", ""))
}

func (s *LoaderTestSuite) TestNotifySkipsFreshTables() {
	var fetches atomic.Int32
	src := loader.SourceFunc(func(_ context.Context, _, _ string) (map[string]string, error) {
		fetches.Add(1)
		return map[string]string{"k": "v"}, nil
	})

	ldr, err := loader.New(s.T().Context(), src)
	s.Require().NoError(err)
	defer ldr.Close()

	table := props.NewTable()
	ldr.Notify("pod", "config.props", table, time.Hour)
	ldr.Wait()
	ldr.Notify("pod", "config.props", table, time.Hour)
	ldr.Wait()

	s.Equal(int32(1), fetches.Load())

	time.Sleep(5 * time.Millisecond)
	ldr.Notify("pod", "config.props", table, time.Millisecond)
	ldr.Wait()
	s.Equal(int32(2), fetches.Load())
}

func (s *LoaderTestSuite) TestNotifyDeduplicatesInflight() {
	release := make(chan struct{})
	var fetches atomic.Int32
	src := loader.SourceFunc(func(_ context.Context, _, _ string) (map[string]string, error) {
		fetches.Add(1)
		<-release
		return map[string]string{}, nil
	})

	ldr, err := loader.New(s.T().Context(), src)
	s.Require().NoError(err)
	defer ldr.Close()

	table := props.NewTable()
	for range 10 {
		ldr.Notify("pod", "config.props", table, time.Minute)
	}
	close(release)
	ldr.Wait()

	s.Equal(int32(1), fetches.Load())
}

func (s *LoaderTestSuite) TestFailedFetchKeepsContents() {
	boom := errors.New("backend down")
	src := loader.SourceFunc(func(_ context.Context, _, _ string) (map[string]string, error) {
		return nil, boom
	})

	ldr, err := loader.New(s.T().Context(), src)
	s.Require().NoError(err)
	defer ldr.Close()

	table := props.NewTable()
	table.Set("kept", "yes")

	err = ldr.Refresh(s.T().Context(), "pod", "config.props", table)
	s.Require().ErrorIs(err, boom)
	s.Equal("yes", table.GetOr("kept", ""))
	s.False(table.Loaded())
}

func (s *LoaderTestSuite) TestNotifyQueuesBeyondWorkers() {
	src := loader.SourceFunc(func(_ context.Context, _, resourcePath string) (map[string]string, error) {
		time.Sleep(20 * time.Millisecond)
		return map[string]string{"path": resourcePath}, nil
	})

	ldr, err := loader.New(s.T().Context(), src, loader.WithWorkers(1))
	s.Require().NoError(err)
	defer ldr.Close()

	paths := []string{"locale/fr-CA.props", "locale/fr.props", "locale/en.props"}
	tables := make([]*props.Table, len(paths))
	for i, path := range paths {
		tables[i] = props.NewTable()
		ldr.Notify("pod", path, tables[i], props.MaxAge)
	}
	ldr.Wait()

	for i, path := range paths {
		s.True(tables[i].Loaded(), path)
		s.Equal(path, tables[i].GetOr("path", ""), path)
	}
}

func (s *LoaderTestSuite) TestFailedRefreshBacksOff() {
	var fetches atomic.Int32
	src := loader.SourceFunc(func(_ context.Context, _, _ string) (map[string]string, error) {
		fetches.Add(1)
		return nil, errors.New("backend down")
	})

	ldr, err := loader.New(s.T().Context(), src, loader.WithRetryDelay(50*time.Millisecond))
	s.Require().NoError(err)
	defer ldr.Close()

	table := props.NewTable()
	for range 3 {
		ldr.Notify("pod", "config.props", table, time.Minute)
		ldr.Wait()
	}
	s.Equal(int32(1), fetches.Load())
	s.False(table.Loaded())

	time.Sleep(60 * time.Millisecond)
	ldr.Notify("pod", "config.props", table, time.Minute)
	ldr.Wait()
	s.Equal(int32(2), fetches.Load())
}

func TestChain(t *testing.T) {
	primary := loader.MapSource{}
	primary.Put("pod", "locale/en.props", map[string]string{"greeting": "hello"})

	secondary := loader.MapSource{}
	secondary.Put("pod", "locale/en.props", map[string]string{"greeting": "ignored"})
	secondary.Put("pod", "config.props", map[string]string{"timeout": "1s"})

	chain := loader.Chain{primary, secondary}
	ctx := t.Context()

	values, err := chain.Fetch(ctx, "pod", "locale/en.props")
	require.NoError(t, err)
	require.Equal(t, "hello", values["greeting"])

	values, err = chain.Fetch(ctx, "pod", "config.props")
	require.NoError(t, err)
	require.Equal(t, "1s", values["timeout"])

	_, err = chain.Fetch(ctx, "pod", "absent.props")
	require.ErrorIs(t, err, loader.ErrNotFound)
}

func TestChainStopsOnError(t *testing.T) {
	boom := errors.New("backend down")
	fallback := loader.MapSource{}
	fallback.Put("pod", "config.props", map[string]string{"timeout": "1s"})

	chain := loader.Chain{
		loader.SourceFunc(func(_ context.Context, _, _ string) (map[string]string, error) {
			return nil, boom
		}),
		fallback,
	}

	_, err := chain.Fetch(t.Context(), "pod", "config.props")
	require.ErrorIs(t, err, boom)
}
