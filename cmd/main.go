package main

import (
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/rs/zerolog"

	"roundbell/internal/config"
	"roundbell/internal/core/engine"
	"roundbell/internal/core/model"
	"roundbell/internal/notify"
	"roundbell/internal/platform"
	"roundbell/internal/ui/mainwindow"
	"roundbell/internal/ui/settings"
	"roundbell/internal/ui/tray"
	"roundbell/resources"
)

const appName = "Roundbell"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	lock, err := platform.AcquireInstanceLock(appName)
	if err != nil {
		logger.Error().Err(err).Msg("roundbell is already running")
		return
	}
	defer func() {
		_ = lock.Release()
	}()

	cfg, err := config.Load(appName)
	if err != nil {
		logger.Warn().Err(err).Msg("config load failed, using defaults")
	}
	logger = logger.Level(cfg.LogLevel)

	fyneApp := app.NewWithID("io.roundbell.app")
	icon := resources.MustIcon("roundbell.png")
	fyneApp.SetIcon(icon)

	sink := notify.NewDesktop(fyneApp, logger)
	timer := engine.New(cfg.Durations, sink, engine.Config{TickInterval: time.Second}, logger)

	var settingsWindow *settings.Window
	mainWindow := mainwindow.New(fyneApp, mainwindow.Callbacks{
		OnStartPause: func() {
			if timer.Snapshot().Running {
				timer.Pause()
			} else {
				timer.Start()
			}
		},
		OnReset: func() {
			timer.Reset()
		},
		OnSettings: func() {
			settingsWindow.SetDurations(timer.Durations())
			settingsWindow.Show()
		},
	})

	settingsWindow = settings.New(fyneApp, timer.Durations(), func(durations model.Durations) {
		timer.SetWorkDuration(durations.Work)
		timer.SetRestDuration(durations.Rest)
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow: mainWindow.Show,
			OnTogglePause: func() {
				if timer.Snapshot().Running {
					timer.Pause()
				} else {
					timer.Start()
				}
			},
			OnReset: timer.Reset,
			OnQuit: func() {
				timer.Stop()
				fyneApp.Quit()
			},
		})
		desktopApp.SetSystemTrayIcon(icon)
		// Closing the window keeps the timer ticking in the tray.
		mainWindow.Native().SetCloseIntercept(mainWindow.Native().Hide)
	}

	events := timer.Subscribe(8)
	go func() {
		for event := range events {
			event := event
			fyne.Do(func() {
				mainWindow.Apply(event)
				if trayManager != nil {
					trayManager.SetStatus(phaseName(event.Phase), model.FormatClock(event.Remaining), event.Round)
					trayManager.SetRunning(event.Running)
				}
			})
		}
	}()

	// While the app is out of the foreground the host may stop scheduling
	// ticks; the engine replays the gap on return so the countdown lands
	// exactly where uninterrupted ticking would have put it.
	lifecycle := fyneApp.Lifecycle()
	lifecycle.SetOnExitedForeground(timer.Suspended)
	lifecycle.SetOnEnteredForeground(func() {
		timer.Resumed(time.Now())
	})

	if configPath, pathErr := config.Path(appName); pathErr == nil {
		watcher, watchErr := config.WatchFile(configPath, config.DefaultDebounce, func(loaded config.Config) {
			timer.SetWorkDuration(loaded.Durations.Work)
			timer.SetRestDuration(loaded.Durations.Rest)
		}, logger)
		if watchErr != nil {
			logger.Debug().Err(watchErr).Msg("config watcher unavailable")
		} else {
			defer watcher.Close()
		}
	}

	// Render the idle state before the first engine event arrives.
	snapshot := timer.Snapshot()
	mainWindow.Apply(engine.Event{
		Type:      engine.EventStateChange,
		Phase:     snapshot.Phase,
		Remaining: snapshot.Remaining,
		Round:     snapshot.Round,
		Running:   snapshot.Running,
		Progress:  snapshot.Progress,
	})

	mainWindow.Show()
	fyneApp.Run()
	timer.Stop()
}

func phaseName(phase engine.Phase) string {
	if phase == engine.PhaseRest {
		return "Rest"
	}
	return "Work"
}
