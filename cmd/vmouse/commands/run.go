package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayusman/vmouse/internal/action"
	"github.com/ayusman/vmouse/internal/app"
	"github.com/ayusman/vmouse/internal/capture"
	"github.com/ayusman/vmouse/internal/config"
	"github.com/ayusman/vmouse/internal/detector"
	"github.com/ayusman/vmouse/internal/gesture"
	"github.com/ayusman/vmouse/internal/plugin"
	"github.com/ayusman/vmouse/internal/server"
	"github.com/ayusman/vmouse/internal/tray"
)

var (
	// Command-line overrides
	flagAddr   string
	flagCamera int
	flagNoTray bool
	flagWebDir string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start gesture control",
	Long: `Start the camera pipeline, the local web UI and, unless --no-tray is
given, the system tray menu.

Hand landmarks come from the MediaPipe service in scripts/hand_service.py.
When it cannot be found vmouse still serves the UI and preview but
recognizes no gestures.`,
	RunE: runVmouse,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address")
	cmd.Flags().IntVar(&flagCamera, "camera", -1, "camera device index")
	cmd.Flags().BoolVar(&flagNoTray, "no-tray", false, "run without the system tray")
	cmd.Flags().StringVar(&flagWebDir, "web", "", "directory of static UI files")
}

func init() {
	addRunFlags(runCmd)
}

func runVmouse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	plugins := plugin.NewManager(cfg.Paths.PluginDir)
	if err := plugins.Discover(); err != nil {
		logger.Warn("discover plugins", zap.String("dir", plugins.Dir()), zap.Error(err))
	}
	if _, err := plugins.Get(action.VolumePlugin); err != nil {
		logger.Warn("volume control unavailable", zap.String("plugin", action.VolumePlugin), zap.String("dir", plugins.Dir()))
	}
	robot := action.NewRobotDispatcher(action.NewPluginVolume(plugins, plugin.NewExecutor(plugin.DefaultTimeout)))
	screenW, screenH := robot.ScreenSize()

	var det detector.Detector
	mp, err := detector.NewMediaPipeDetector(cfg.DetectorConfig())
	if err != nil {
		logger.Warn("hand detection unavailable, gestures disabled", zap.Error(err))
		det = detector.NewMockDetector()
	} else {
		det = mp
	}

	camera := capture.NewCamera(capture.CameraConfig{
		Device: cfg.Camera.Device,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		FPS:    cfg.Pipeline.IdleFPS,
	})

	hub := server.NewHub(logger)
	application, err := app.New(app.Config{
		Settings:     cfg,
		Store:        st,
		Camera:       camera,
		Detector:     det,
		Dispatcher:   robot,
		Publisher:    hub,
		Logger:       logger,
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
	})
	if err != nil {
		return err
	}
	if err := application.LoadSettings(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(); err != nil {
		return err
	}
	defer application.Stop()

	srv := server.New(server.Config{
		StaticDir: findWebDir(cfg.Paths.DataDir),
		Logger:    logger,
		Settings:  application,
		Control:   application,
		Status:    application,
		Events:    st.Events(),
		Plugins:   plugins,
		Preview:   application,
		Hub:       hub,
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(ctx, cfg.Server.Addr)
		stop()
	}()

	url := settingsURL(cfg.Server.Addr)
	logger.Info("vmouse running",
		zap.String("ui", url),
		zap.Int("screen_width", screenW),
		zap.Int("screen_height", screenH))

	if cfg.Tray {
		t := tray.New(application, url, logger)
		application.OnGesture(func(k gesture.Kind) { t.SetLastGesture(string(k)) })
		t.OnQuit(stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// applyRunFlags overrides cfg with the flags given on the command line.
func applyRunFlags(cfg *config.Config) {
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if flagCamera >= 0 {
		cfg.Camera.Device = flagCamera
	}
	if flagNoTray {
		cfg.Tray = false
	}
}

// settingsURL returns the browser URL for a listen address.
func settingsURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

// findWebDir returns --web, or the first of ./web, ../web and
// <dataDir>/web that exists.
func findWebDir(dataDir string) string {
	if flagWebDir != "" {
		return flagWebDir
	}
	for _, p := range []string{"web", filepath.Join("..", "web"), filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
