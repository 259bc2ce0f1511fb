// Package daemon runs the monitor loop in the foreground with a status API
// served over a unix socket. This is the host-side test mode; inside the
// initramfs the monitor runs without the API.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/monitor"
)

var (
	mon  *monitor.Monitor
	conf config.Config
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus)
	router.GET("/battery", getBattery)
	router.GET("/lid", getLid)
	router.GET("/usb-devices", getUSBDevices)
	router.GET("/config", getConfig)
	router.GET("/version", getVersion)

	return router
}

// Run serves the status API and drives the monitor loop until a signal
// arrives or the battery shutdown transition fires.
func Run(m *monitor.Monitor, cfg config.Config, unixSocketPath string, allowNonRoot bool) error {
	mon = m
	conf = cfg

	router := setupRoutes()
	srv := &http.Server{
		Handler: router,
	}

	_ = os.Remove(unixSocketPath)
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return err
	}

	if allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		if err := os.Chmod(unixSocketPath, 0o777); err != nil {
			return err
		}
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()

	loopDone := make(chan error, 1)
	go func() {
		logrus.Debugln("monitor loop starts")
		loopDone <- m.Run(loopCtx)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigc:
		logrus.Infof("caught signal %q: shutting down.", sig)
		cancelLoop()
	case err := <-loopDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logrus.Errorf("monitor loop exited: %v", err)
		} else {
			logrus.Info("monitor loop finished")
		}
	}

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}

	_ = os.Remove(unixSocketPath)
	logrus.Info("exiting")
	return nil
}
