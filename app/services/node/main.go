package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/minichain/minichain/app/services/node/handlers"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/peer"
	"github.com/minichain/minichain/foundation/blockchain/state"
	"github.com/minichain/minichain/foundation/blockchain/worker"
	"github.com/minichain/minichain/foundation/events"
	"github.com/minichain/minichain/foundation/logger"
	"github.com/minichain/minichain/foundation/p2p"
)

// build is the git version of this program. It is set using build flags.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Node struct {
			DifficultyPrefix string `conf:"default:00"`
		}
		P2P struct {
			Topic      string  `conf:"default:chains"`
			ListenAddr string  `conf:"default:/ip4/0.0.0.0/tcp/0"`
			RateLimit  float64 `conf:"default:64"`
			RateBurst  int     `conf:"default:128"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	// The blockchain packages accept a function of this signature to allow
	// the application to log. These raw messages are also sent to any
	// websocket client connected through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s)
		evts.Send(s)
	}

	// Every node on the network must be constructed with the same
	// difficulty prefix or they will reject each other's blocks.
	gen := genesis.New(cfg.Node.DifficultyPrefix)

	// The peer set is populated purely from discovery events; it starts
	// empty on every run.
	peerSet := peer.NewPeerSet()

	st, err := state.New(state.Config{
		Genesis:    gen,
		KnownPeers: peerSet,
		EvHandler:  ev,
	})
	if err != nil {
		return err
	}

	log.Infow("startup", "status", "node constructed", "node_id", st.RetrieveNodeID())

	// =========================================================================
	// Gossip Network Support

	p2pCtx, p2pCancel := context.WithCancel(context.Background())
	defer p2pCancel()

	svc, err := p2p.New(p2pCtx, p2p.Config{
		Topic:      cfg.P2P.Topic,
		ListenAddr: cfg.P2P.ListenAddr,
		RateLimit:  rate.Limit(cfg.P2P.RateLimit),
		RateBurst:  cfg.P2P.RateBurst,
		EvHandler:  ev,
	})
	if err != nil {
		return fmt.Errorf("unable to join gossip network: %w", err)
	}
	defer svc.Close()

	p2pErrors := make(chan error, 1)
	go func() {
		p2pErrors <- svc.Run(p2pCtx)
	}()

	// =========================================================================
	// Operator Input Support

	// Operator commands arrive line by line on stdin and are dispatched
	// by the event loop. The channel closes on EOF, which simply disables
	// that input source.
	operator := make(chan string)
	go func() {
		defer close(operator)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			operator <- sc.Text()
		}
	}()

	// =========================================================================
	// Worker Support

	// A consensus failure with no safe continuation surfaces here rather
	// than aborting deep inside the resolution logic.
	fatal := make(chan error, 1)

	worker.Run(st, worker.Config{
		Net:      svc,
		Operator: operator,
		OperatorHandler: func(line string) {
			handleOperatorCommand(log, st, line)
		},
		Fatal:     fatal,
		EvHandler: ev,
	})
	defer st.Shutdown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux(build, log)); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing public API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Log:   log,
		State: st,
		Evts:  evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case err := <-p2pErrors:
		return fmt.Errorf("gossip network error: %w", err)

	case err := <-fatal:

		// Neither the local nor a remote chain validates. There is no
		// safe continuation; stop the node so an operator can intervene.
		return fmt.Errorf("consensus failure: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}

		// Stop the gossip readers before the host closes.
		p2pCancel()
	}

	return nil
}
