// Command tetrapol-decode runs one or more TETRAPOL physical-channel
// receivers against configured bit sources, publishing decode events to
// Prometheus, MQTT, a websocket dashboard, and an SCR-persistence store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/dbehnke/tetrapol-phys/pkg/config"
	"github.com/dbehnke/tetrapol-phys/pkg/logger"
	"github.com/dbehnke/tetrapol-phys/pkg/metrics"
	"github.com/dbehnke/tetrapol-phys/pkg/mqtt"
	"github.com/dbehnke/tetrapol-phys/pkg/multiblock"
	"github.com/dbehnke/tetrapol-phys/pkg/scrstore"
	"github.com/dbehnke/tetrapol-phys/pkg/source"
	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
	"github.com/dbehnke/tetrapol-phys/pkg/web"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	validateOnly := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tetrapol-decode %s\n", version)
		fmt.Printf("Git Commit: %s\n", gitCommit)
		fmt.Printf("Built: %s\n", buildTime)
		os.Exit(0)
	}

	log := logger.New(logger.Config{Level: "info", Format: "text"})
	log.Info("starting tetrapol-decode",
		logger.String("version", version), logger.String("commit", gitCommit))

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	if *validateOnly {
		log.Info("configuration is valid")
		os.Exit(0)
	}

	log = logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	var store *scrstore.Store
	if cfg.Persistence.Enabled {
		store, err = scrstore.Open(scrstore.Config{Path: cfg.Persistence.Path}, log.WithComponent("scrstore"))
		if err != nil {
			log.Error("failed to open scr store", logger.Error(err))
			os.Exit(1)
		}
		defer store.Close()
	}

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(metrics.ServerConfig{
			Enabled: true,
			Addr:    cfg.Metrics.Addr,
			Path:    cfg.Metrics.Path,
		}, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("metrics server error", logger.Error(err))
			}
		}()
	}

	dashboardBound := false

	channelIDs := make([]string, 0, len(cfg.Channels))
	for id := range cfg.Channels {
		channelIDs = append(channelIDs, id)
	}
	sort.Strings(channelIDs)

	for _, channelID := range channelIDs {
		channelID, chCfg := channelID, cfg.Channels[channelID]
		chLog := log.WithComponent("channel." + channelID)

		band := tetrapol.BandUHF
		if chCfg.Band == "vhf" {
			band = tetrapol.BandVHF
		}
		rchType := tetrapol.RCHControl
		if chCfg.RCHType == "traffic" {
			rchType = tetrapol.RCHTraffic
		}

		scr := chCfg.SCR
		if store != nil {
			if savedSCR, savedConfidence, ok := store.Load(channelID); ok {
				scr = savedSCR
				chLog.Info("restored persisted scr",
					logger.Int("scr", savedSCR), logger.Int("confidence", savedConfidence))
			}
		}

		assembler := multiblock.New(channelID, chLog, func(b multiblock.Block) {
			chLog.Debug("multiblock assembled", logger.Int("bits", len(b.Bits)))
		})
		segmentation := multiblock.NewSegmentation(chLog)

		var observers []tetrapol.Observer
		observers = append(observers, metrics.NewCollector(channelID))

		if cfg.MQTT.Enabled {
			pub, err := mqtt.New(mqtt.Config{
				Enabled:     true,
				Broker:      cfg.MQTT.Broker,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				ClientID:    fmt.Sprintf("%s-%s", cfg.MQTT.ClientID, channelID),
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				QoS:         cfg.MQTT.QoS,
				Retained:    cfg.MQTT.Retained,
			}, channelID, chLog)
			if err != nil {
				chLog.Error("failed to start mqtt publisher", logger.Error(err))
			} else {
				observers = append(observers, pub)
				defer pub.Close()
			}
		}

		var channel *tetrapol.PhysicalChannel
		channel, err = tetrapol.NewPhysicalChannel(band, rchType,
			tetrapol.WithMultiblockAssembler(assembler),
			tetrapol.WithSegmentationLayer(segmentation),
			tetrapol.WithLogger(chLog),
			tetrapol.WithInitialSCR(scr),
		)
		if err != nil {
			log.Error("failed to construct physical channel",
				logger.String("channel", channelID), logger.Error(err))
			continue
		}
		if chCfg.SCRConfidence > 0 {
			channel.SetSCRConfidence(chCfg.SCRConfidence)
		}

		if cfg.Web.Enabled && !dashboardBound {
			dashboardBound = true
			webCfg := web.Config{Enabled: cfg.Web.Enabled, Host: cfg.Web.Host, Port: cfg.Web.Port}
			webServer := web.NewServer(webCfg, log.WithComponent("web"), channelID, channel)
			observers = append(observers, webServer.Observer())
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := webServer.Start(ctx); err != nil && err != context.Canceled {
					log.Error("web server error", logger.Error(err))
				}
			}()
		}

		fanout := newFanoutObserver(observers...)
		if store != nil {
			fanout = fanout.withCommitHook(func(key int) {
				if err := store.Save(channelID, key, channel.GetSCRConfidence()); err != nil {
					chLog.Error("failed to persist scr", logger.Error(err))
				}
			})
		}
		tetrapol.WithObserver(fanout)(channel)

		var src interface {
			Pump(context.Context, source.Channel) error
		}
		switch chCfg.Source.Type {
		case "file":
			src = source.NewFileSource(chCfg.Source.Path, chLog)
		case "udp":
			src = source.NewUDPSource(chCfg.Source.Addr, chLog)
		default:
			src = source.NewStdinSource(chLog)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := src.Pump(ctx, channel); err != nil && err != context.Canceled {
				chLog.Error("bit source pump error", logger.Error(err))
			}
		}()

		chLog.Info("channel started",
			logger.String("band", band.String()), logger.String("rch_type", rchType.String()))
	}

	log.Info("tetrapol-decode running")

	sig := <-sigCh
	log.Info("received shutdown signal", logger.String("signal", sig.String()))
	cancel()
	wg.Wait()
	log.Info("tetrapol-decode stopped")
}

// fanoutObserver broadcasts every tetrapol.Observer event to a fixed set of
// sub-observers, and optionally runs an extra hook on ScrCommitted to
// persist the confirmed key.
type fanoutObserver struct {
	observers  []tetrapol.Observer
	commitHook func(key int)
}

func newFanoutObserver(observers ...tetrapol.Observer) *fanoutObserver {
	return &fanoutObserver{observers: observers}
}

func (f *fanoutObserver) withCommitHook(hook func(key int)) *fanoutObserver {
	f.commitHook = hook
	return f
}

func (f *fanoutObserver) SyncAcquired() {
	for _, o := range f.observers {
		o.SyncAcquired()
	}
}

func (f *fanoutObserver) SyncLost() {
	for _, o := range f.observers {
		o.SyncLost()
	}
}

func (f *fanoutObserver) FrameOK(frameNo tetrapol.FrameNo) {
	for _, o := range f.observers {
		o.FrameOK(frameNo)
	}
}

func (f *fanoutObserver) FrameDropped(reason string) {
	for _, o := range f.observers {
		o.FrameDropped(reason)
	}
}

func (f *fanoutObserver) ScrCommitted(key int) {
	for _, o := range f.observers {
		o.ScrCommitted(key)
	}
	if f.commitHook != nil {
		f.commitHook(key)
	}
}
