// Command trafficmim sits between a system under test and whatever it
// talks to, recording every request/response pair to a transcript or,
// given a previously recorded transcript, answering from it instead of
// contacting the real collaborator at all.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/traffic-mim/server/internal/config"
	"github.com/traffic-mim/server/internal/diag"
	"github.com/traffic-mim/server/internal/dial"
	"github.com/traffic-mim/server/internal/dispatch"
	"github.com/traffic-mim/server/internal/fileedit"
	"github.com/traffic-mim/server/internal/fileedit/editstore"
	"github.com/traffic-mim/server/internal/mlog"
	"github.com/traffic-mim/server/internal/orchestrator"
	"github.com/traffic-mim/server/internal/procreg"
	"github.com/traffic-mim/server/internal/replay"
	"github.com/traffic-mim/server/internal/serializer"
	"github.com/traffic-mim/server/internal/traffic"
)

var banner = "trafficmim: traffic interception and record/replay server\n"

func usage() {
	fmt.Print(banner)
	fmt.Println("usage: trafficmim [options]")
	flag.PrintDefaults()
}

var (
	rec     *serializer.Serializer
	ctlSrv  *diag.Server
)

func main() {
	flag.Usage = usage
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := mlog.Init(cfg.LogLevel, cfg.LogStderr, cfg.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.RecordFile == "" && cfg.ReplayFile == "" {
		mlog.Fatalln("one of -r or -p is required")
	}

	orch, err := build(cfg)
	if err != nil {
		mlog.Fatalln(err)
	}

	if cfg.DiagSocket != "" {
		s, err := diag.Listen(cfg.DiagSocket, orch.Ctx, cfg)
		if err != nil {
			mlog.Fatalln(err)
		}
		ctlSrv = s
		go ctlSrv.Serve()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	d, err := dispatch.Listen(orch, cfg.Sequential, os.Stdout)
	if err != nil {
		mlog.Fatalln(err)
	}

	go func() {
		<-sig
		mlog.Info("caught signal, tearing down")
		d.Shutdown()
	}()

	d.Serve()
	teardown()
}

// build wires together the traffic context and the orchestrator that
// drives it, per the -r/-p/-F/-f/-m/-socks5/-i flags.
func build(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	ctx := &traffic.Context{
		Config: cfg,
		Procs:  procreg.NewTable(),
		Edits:  fileedit.NewTracker(cfg.FileEditIgnoreNames),
		Peer:   traffic.NewPeerRegistry(),
		InProc: traffic.NewInProcRegistry(),
	}

	dialer, err := dial.New(cfg.Socks5Proxy)
	if err != nil {
		return nil, err
	}
	ctx.Dialer = dialer

	o := &orchestrator.Orchestrator{Ctx: ctx, Cfg: cfg}

	if cfg.ReplayFile != "" {
		text, err := os.ReadFile(cfg.ReplayFile)
		if err != nil {
			return nil, err
		}
		o.Replay = replay.Load(string(text))

		if cfg.FileEditReplayRoot != "" {
			store, err := editstore.Open(cfg.FileEditReplayRoot)
			if err != nil {
				return nil, err
			}
			ctx.Store = store
		}
	}

	if cfg.RecordFile != "" {
		s, err := serializer.New(cfg.RecordFile)
		if err != nil {
			return nil, err
		}
		o.Rec = s
		rec = s

		if cfg.FileEditRecordRoot != "" {
			store, err := editstore.Open(cfg.FileEditRecordRoot)
			if err != nil {
				return nil, err
			}
			ctx.Store = store
		}
	}

	mlog.Infoln("record:", cfg.RecordFile, "replay:", cfg.ReplayFile, "sequential:", strconv.FormatBool(cfg.Sequential))

	return o, nil
}

func teardown() {
	if ctlSrv != nil {
		ctlSrv.Close()
	}
	if rec != nil {
		if err := rec.Close(); err != nil {
			mlog.Errorln(err)
		}
	}
	os.Exit(0)
}
