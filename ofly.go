package ofly

import (
	"fmt"

	dfworld "github.com/df-mc/dragonfly/server/world"
	"github.com/oomph-ac/ofly/detection"
	"github.com/oomph-ac/ofly/flight"
	"github.com/oomph-ac/ofly/session"
	"github.com/oomph-ac/ofly/settings"
	"github.com/oomph-ac/ofly/worker"
	"github.com/oomph-ac/ofly/world"
	"github.com/sirupsen/logrus"
)

// Config holds the options of an Ofly instance.
type Config struct {
	// Log is the logger flags and debug output are written to. If nil, a logger with the level of the
	// ofly.log-level setting is created.
	Log *logrus.Logger
	// Settings holds the thresholds and detection metadata. If nil, settings.Default is used.
	Settings *settings.Settings
	// Blocks is the block source sessions read from unless they are opened with their own probe.
	Blocks dfworld.BlockSource
	// Lanes is the amount of worker lanes. Zero or less uses one lane per CPU.
	Lanes int
}

// Ofly detects impossible vertical movement for every entity of a host.
type Ofly struct {
	log      *logrus.Logger
	settings *settings.Settings

	detector *flight.Detector
	manager  *detection.Manager
	pool     *worker.Pool
	registry *session.Registry
}

// New returns an Ofly instance wired from the configuration passed.
func New(conf Config) (*Ofly, error) {
	s := conf.Settings
	if s == nil {
		s = settings.Default()
	}

	log := conf.Log
	if log == nil {
		level, err := logrus.ParseLevel(s.StringOr(settings.KindOfly, "log-level", "info"))
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		log = logrus.New()
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
		log.SetLevel(level)
	}

	variant, err := flight.ParseVariant(s.StringOr(settings.KindFlight, "variant", ""))
	if err != nil {
		return nil, err
	}
	eval, err := flight.NewEvaluatorFromProvider(variant, s)
	if err != nil {
		return nil, err
	}

	meta, err := detection.MetadataFromProvider(s)
	if err != nil {
		return nil, err
	}
	punishable, err := s.Bool(settings.KindDetection, "punishable")
	if err != nil {
		return nil, fmt.Errorf("read detection metadata: %w", err)
	}

	o := &Ofly{log: log, settings: s}
	o.manager = detection.NewManager(detection.NewFly(eval.Params().SubType, punishable), meta, log)
	o.detector = flight.NewDetector(eval, o.manager, log)
	o.pool = worker.New(conf.Lanes, log)
	o.registry = session.NewRegistry(o.detector, o.manager, o.pool, world.NewProbe(conf.Blocks), log)

	log.Debugf("ofly started (variant=%s lanes=%d thresholds=%+v)", variant, o.pool.Lanes(), eval.Thresholds())
	return o, nil
}

// Log ...
func (o *Ofly) Log() *logrus.Logger {
	return o.log
}

// Settings ...
func (o *Ofly) Settings() *settings.Settings {
	return o.settings
}

// Detector ...
func (o *Ofly) Detector() *flight.Detector {
	return o.detector
}

// Manager returns the detection manager, which may be given handlers for flags, punishments and rollbacks.
func (o *Ofly) Manager() *detection.Manager {
	return o.manager
}

// Registry ...
func (o *Ofly) Registry() *session.Registry {
	return o.registry
}

// Close waits for all queued work to finish and stops the worker lanes.
func (o *Ofly) Close() {
	o.pool.Close()
}
