package cmd

import (
	"os"

	"github.com/grovetools/reqs/cli"
	"github.com/grovetools/reqs/config"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/state"
	"github.com/spf13/cobra"
)

// session is a store with the project named by the flags or reqs.yml loaded.
type session struct {
	store  *state.Store
	config *config.Config
}

// newStore builds a store for the command's working directory, loading
// projects with the configured ignore patterns.
func newStore(cmd *cobra.Command, cfg *config.Config, opts ...state.Option) (*state.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	opts = append([]state.Option{
		state.WithLoader(state.HierarchyLoader(hierarchy.WithIgnore(cfg.Ignore...))),
		state.WithLogger(cli.GetLogger(cmd).WithField("component", "store")),
	}, opts...)
	if cfg.Editor.InitialNotify {
		opts = append(opts, state.WithInitialNotify())
	}
	return state.NewStore(state.Seed(cwd), opts...), nil
}

// openSession loads the configuration and the project.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	project, err := cli.ProjectPath(cmd, cfg)
	if err != nil {
		return nil, err
	}
	store, err := newStore(cmd, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{store: store, config: cfg}
	if err := s.dispatch(state.SetProjectPath{Path: project}, state.LoadProject{}); err != nil {
		return nil, err
	}
	return s, nil
}

// dispatch runs actions in order and stops at the first failure.
func (s *session) dispatch(actions ...state.Action) error {
	for _, action := range actions {
		if res := s.store.Dispatch(action); !res.OK {
			return res.Err()
		}
	}
	return nil
}

// edit dispatches actions and saves when all of them succeeded.
func (s *session) edit(actions ...state.Action) error {
	if err := s.dispatch(actions...); err != nil {
		return err
	}
	return s.dispatch(state.SaveProject{})
}

func (s *session) tree() *hierarchy.Tree {
	return s.store.State().Tree()
}
