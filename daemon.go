// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package rmpd is the daemon core's entry point. It assembles the catalog,
// partition/queue, playback, advancer, security, mount, and companion HTTP
// components into one supervised process. Building the rmpdoptions.Options
// value itself (flags, config file, env) is an external collaborator's job;
// this package never reads argv or a config file.
package rmpd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rmpd/rmpd/internal/advancer"
	"github.com/rmpd/rmpd/internal/catalog"
	"github.com/rmpd/rmpd/internal/eventbus"
	"github.com/rmpd/rmpd/internal/httpapi"
	"github.com/rmpd/rmpd/internal/logging"
	"github.com/rmpd/rmpd/internal/mount"
	"github.com/rmpd/rmpd/internal/output"
	"github.com/rmpd/rmpd/internal/partition"
	"github.com/rmpd/rmpd/internal/playback"
	"github.com/rmpd/rmpd/internal/protocol"
	"github.com/rmpd/rmpd/internal/rmpderr"
	"github.com/rmpd/rmpd/internal/rmpdoptions"
	"github.com/rmpd/rmpd/internal/security"
	"github.com/rmpd/rmpd/internal/statefile"
	"github.com/rmpd/rmpd/internal/supervisor"
)

// Collaborators are the pluggable pieces spec.md §6 leaves external: decoder
// backend, audio sink, mount storage backend, tag reader, and the
// statically-configured output list. A CLI/config layer constructs concrete
// implementations of these (or test doubles) and hands them to New.
type Collaborators struct {
	DecoderOpener playback.DecoderOpener
	Sink          playback.Sink
	MountBackend  mount.Backend
	TagReader     catalog.TagReader
	Fingerprinter protocol.Fingerprinter
	Outputs       []output.Output
}

// Daemon is one running rmpd instance: the assembled component graph plus
// the supervisor tree driving its services.
type Daemon struct {
	opts rmpdoptions.Options

	store      *catalog.Store
	bus        *eventbus.Bus
	partitions *partition.Manager
	engine     *playback.Engine
	status     *advancer.Status
	mounts     *mount.Manager
	outputs    *output.Manager
	auth       *security.Authenticator

	tree *supervisor.SupervisorTree
}

// New wires every component described in SPEC_FULL.md into one Daemon. It
// opens the catalog and loads the state file but does not start serving;
// call Run for that.
func New(opts rmpdoptions.Options, collab Collaborators) (*Daemon, error) {
	store, err := catalog.Open(opts.DBFile)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	bus := eventbus.New()
	partitions := partition.NewManager()
	auth := security.NewAuthenticator(opts.PasswordHash)
	mounts := mount.NewManager(collab.MountBackend)
	outputs := output.NewManager(collab.Outputs)
	engine := playback.New(collab.DecoderOpener, collab.Sink, bus)
	status := advancer.NewStatus()

	d := &Daemon{
		opts:       opts,
		store:      store,
		bus:        bus,
		partitions: partitions,
		engine:     engine,
		status:     status,
		mounts:     mounts,
		outputs:    outputs,
		auth:       auth,
	}

	if err := d.restoreState(); err != nil {
		logging.Warn().Err(err).Msg("no prior state file restored, starting from defaults")
	}

	logger := logging.NewSlogLoggerWithLevel(opts.LogLevel)
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build supervisor tree: %w", err)
	}
	d.tree = tree

	defaultPartition, ok := partitions.Get(partition.DefaultName)
	if !ok {
		_ = store.Close()
		return nil, rmpderr.Newf(rmpderr.System, "default partition missing after NewManager")
	}

	advancerEngine := &engineAdapter{engine: engine}
	adv := advancer.New(defaultPartition.Queue, advancerEngine, bus, status)
	tree.AddPlaybackService(&advancerService{advancer: adv, subscriberID: "advancer:" + partition.DefaultName})

	daemonState := &protocol.Daemon{
		Store:         store,
		Partitions:    partitions,
		Engine:        engine,
		Status:        status,
		Mounts:        mounts,
		Outputs:       outputs,
		Auth:          auth,
		Bus:           bus,
		TagReader:     collab.TagReader,
		Fingerprinter: collab.Fingerprinter,
		MusicRoot:     opts.MusicDirectory,
		StateFilePath: opts.StateFile,
	}

	server := protocol.NewServer(daemonState, opts.ListenAddress, opts.BinaryLimit, logger, nil)
	tree.AddNetworkService(server)

	if opts.CompanionHTTPAddress != "" {
		httpCfg := httpapi.DefaultConfig(bus)
		httpCfg.Health = store.Ping
		tree.AddNetworkService(&companionHTTPService{addr: opts.CompanionHTTPAddress, cfg: httpCfg})
	}

	return d, nil
}

// Run starts the supervisor tree and blocks until ctx is canceled, then
// persists final player state before returning.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.saveState()
	return d.tree.Serve(ctx)
}

// Store exposes the catalog store to an out-of-scope scanner/watcher
// collaborator that needs to drive rescans outside of a client connection.
func (d *Daemon) Store() *catalog.Store { return d.store }

func (d *Daemon) restoreState() error {
	if d.opts.StateFile == "" {
		return nil
	}
	state, err := statefile.Load(d.opts.StateFile)
	if err != nil {
		return err
	}
	d.engine.SetVolume(uint8(state.Volume))
	d.status.Random = state.Random
	d.status.Repeat = state.Repeat
	d.status.Single = advancer.TriState(state.Single)
	d.status.Consume = advancer.TriState(state.Consume)
	d.status.MixrampDB = state.MixrampDB
	d.status.MixrampDelay = state.MixrampDelay
	d.engine.SetCrossfade(state.Crossfade)

	defaultPartition, ok := d.partitions.Get(partition.DefaultName)
	if !ok {
		return nil
	}
	for _, entry := range state.Playlist {
		defaultPartition.Queue.Add(entry.Path)
	}
	if state.HasCurrent {
		d.status.CurrentPos = state.Current
	}
	return nil
}

func (d *Daemon) saveState() {
	if d.opts.StateFile == "" {
		return
	}

	defaultPartition, ok := d.partitions.Get(partition.DefaultName)
	if !ok {
		return
	}

	state := statefile.State{
		Volume:       int(d.engine.Volume()),
		PlayState:    d.engine.State().String(),
		Current:      d.status.CurrentPos,
		HasCurrent:   d.status.CurrentPos >= 0,
		Elapsed:      d.engine.Elapsed(),
		HasElapsed:   d.status.CurrentPos >= 0,
		Random:       d.status.Random,
		Repeat:       d.status.Repeat,
		Single:       int(d.status.Single),
		Consume:      int(d.status.Consume),
		Crossfade:    d.engine.Snapshot().CrossfadeSecs,
		MixrampDB:    d.status.MixrampDB,
		MixrampDelay: d.status.MixrampDelay,
	}
	for i, item := range defaultPartition.Queue.Items() {
		state.Playlist = append(state.Playlist, statefile.PlaylistEntry{Position: i, Path: item.Path})
	}

	if err := statefile.Save(d.opts.StateFile, state); err != nil {
		logging.Warn().Err(err).Msg("failed to save state file on shutdown")
	}
}

// engineAdapter bridges playback.Engine's Song-shaped Play to the
// advancer.Engine interface, which only carries a path: the queue already
// stores absolute paths (handlers_playback.go resolves them the same way),
// so no catalog lookup is needed here.
type engineAdapter struct {
	engine *playback.Engine
}

func (a *engineAdapter) Play(ctx context.Context, song advancer.PlaySong) error {
	return a.engine.Play(ctx, playback.Song{AbsPath: song.Path})
}

func (a *engineAdapter) Stop() {
	a.engine.Stop()
}

// advancerService adapts advancer.Advancer.Run's two-argument signature to
// suture.Service's plain Serve(ctx) error.
type advancerService struct {
	advancer     *advancer.Advancer
	subscriberID string
}

func (s *advancerService) Serve(ctx context.Context) error {
	return s.advancer.Run(ctx, s.subscriberID)
}

// companionHTTPService wraps httpapi's chi router in an http.Server that
// implements suture.Service: bind on Serve, shut down on ctx.Done(), same
// shape as the teacher's sync-manager wrappers in internal/supervisor.
type companionHTTPService struct {
	addr string
	cfg  httpapi.Config
}

func (s *companionHTTPService) Serve(ctx context.Context) error {
	router := httpapi.NewRouter(ctx, s.cfg)
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("companion HTTP server shutdown error")
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
