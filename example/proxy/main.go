package main

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly"
	"github.com/oomph-ac/ofly/game"
	"github.com/oomph-ac/ofly/settings"
	"github.com/oomph-ac/ofly/world"
	"github.com/sandertv/gophertunnel/minecraft"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/sirupsen/logrus"
)

const kindProxy = "proxy"

// players maps the names of connected players to their connections, so that rollbacks and punishments of
// the detection can be sent to them.
type players struct {
	listener *minecraft.Listener

	mu    sync.Mutex
	conns map[string]*connection
}

type connection struct {
	conn      *minecraft.Conn
	runtimeID uint64
}

func (p *players) add(name string, c *connection) {
	p.mu.Lock()
	p.conns[name] = c
	p.mu.Unlock()
}

func (p *players) remove(name string) {
	p.mu.Lock()
	delete(p.conns, name)
	p.mu.Unlock()
}

func (p *players) get(name string) (*connection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.conns[name]
	return c, ok
}

// Rollback teleports the player back to the feet position passed.
func (p *players) Rollback(name string, pos mgl64.Vec3) {
	c, ok := p.get(name)
	if !ok {
		return
	}
	eye := pos.Add(mgl64.Vec3{0, game.DefaultPlayerHeightOffset, 0})
	_ = c.conn.WritePacket(&packet.MovePlayer{
		EntityRuntimeID: c.runtimeID,
		Position:        mgl32.Vec3{float32(eye.X()), float32(eye.Y()), float32(eye.Z())},
		Mode:            packet.MoveModeTeleport,
		TeleportCause:   packet.TeleportCauseUnknown,
	})
}

// Punish disconnects the player.
func (p *players) Punish(name, message string) {
	if c, ok := p.get(name); ok {
		_ = p.listener.Disconnect(c.conn, message)
	}
}

// The following program implements a proxy that forwards players from one local address to a remote address
// while checking their vertical movement.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	conf, err := settings.LoadOrCreate("ofly.toml")
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}
	localAddr := conf.StringOr(kindProxy, "local-address", "0.0.0.0:19132")
	remoteAddr := conf.StringOr(kindProxy, "remote-address", "127.0.0.1:19133")
	conf.Set(kindProxy, "local-address", localAddr)
	conf.Set(kindProxy, "remote-address", remoteAddr)
	if err := conf.Write("ofly.toml"); err != nil {
		log.Fatalf("error writing config file: %v", err)
	}
	if level, err := logrus.ParseLevel(conf.StringOr(settings.KindOfly, "log-level", "info")); err == nil {
		log.SetLevel(level)
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Fatalf("sentry init: %v", err)
		}
		defer sentry.Flush(time.Second * 5)
	}

	o, err := ofly.New(ofly.Config{Log: log, Settings: conf})
	if err != nil {
		log.Fatalf("error starting ofly: %v", err)
	}
	defer o.Close()

	p, err := minecraft.NewForeignStatusProvider(remoteAddr)
	if err != nil {
		panic(err)
	}
	listener, err := minecraft.ListenConfig{
		StatusProvider: p,
	}.Listen("raknet", localAddr)
	if err != nil {
		panic(err)
	}
	defer listener.Close()

	pl := &players{listener: listener, conns: make(map[string]*connection)}
	o.Manager().HandleRollbacks(pl)
	o.Manager().HandlePunishments(pl)

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
	}

	fmt.Printf("ofly is now listening on %v and directing connections to %v!\n", localAddr, remoteAddr)
	for {
		c, err := listener.Accept()
		if err != nil {
			return
		}
		go handleConn(c.(*minecraft.Conn), listener, remoteAddr, o, pl)
	}
}

// handleConn handles a new incoming minecraft.Conn from the minecraft.Listener passed.
func handleConn(conn *minecraft.Conn, listener *minecraft.Listener, remoteAddr string, o *ofly.Ofly, pl *players) {
	serverConn, err := minecraft.Dialer{
		IdentityData: conn.IdentityData(),
		ClientData:   conn.ClientData(),
	}.Dial("raknet", remoteAddr)
	if err != nil {
		_ = listener.Disconnect(conn, "unable to reach the server")
		return
	}

	var g sync.WaitGroup
	g.Add(2)
	go func() {
		defer g.Done()
		if err := conn.StartGame(serverConn.GameData()); err != nil {
			o.Log().Errorf("start game: %v", err)
		}
	}()
	go func() {
		defer g.Done()
		if err := serverConn.DoSpawn(); err != nil {
			o.Log().Errorf("spawn: %v", err)
		}
	}()
	g.Wait()

	name := conn.IdentityData().DisplayName
	runtimeID := serverConn.GameData().EntityRuntimeID
	w := world.New(o.Log())
	o.Registry().OpenIn(name, runtimeID, world.NewProbe(w))
	pl.add(name, &connection{conn: conn, runtimeID: runtimeID})
	defer func() {
		pl.remove(name)
		_ = o.Registry().Close(name)
	}()

	completion := make(chan struct{}, 2)
	go func() {
		defer listener.Disconnect(conn, "connection lost")
		defer serverConn.Close()
		defer func() {
			completion <- struct{}{}
		}()

		for {
			pk, err := conn.ReadPacket()
			if err != nil {
				return
			}
			err = o.Registry().HandleClientPacket(name, pk, func(cancel bool) {
				if cancel {
					return
				}
				if err := serverConn.WritePacket(pk); err != nil {
					var disc minecraft.DisconnectError
					if errors.As(err, &disc) {
						_ = listener.Disconnect(conn, disc.Error())
					}
				}
			})
			if err != nil {
				return
			}
		}
	}()
	go func() {
		defer serverConn.Close()
		defer listener.Disconnect(conn, "connection lost")
		defer func() {
			completion <- struct{}{}
		}()

		for {
			pk, err := serverConn.ReadPacket()
			if err != nil {
				var disc minecraft.DisconnectError
				if errors.As(err, &disc) {
					_ = listener.Disconnect(conn, disc.Error())
				}
				return
			}
			w.HandleServerPacket(pk)
			if err := o.Registry().HandleServerPacket(name, pk); err != nil {
				return
			}
			if err := conn.WritePacket(pk); err != nil {
				return
			}
		}
	}()
	<-completion
}
