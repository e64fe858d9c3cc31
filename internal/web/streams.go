package web

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/KavishaShah6/portfolio/internal/loader"
	"github.com/KavishaShah6/portfolio/internal/scene"
	"github.com/KavishaShah6/portfolio/internal/typewriter"
)

const maxSceneFrames = 120

func (s *Server) loaderSteps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"steps":           viewOf(s.sequence, s.sequence.Start()).Steps,
		"total_ms":        s.sequence.Total().Milliseconds(),
		"reveal_delay_ms": loader.RevealDelay.Milliseconds(),
	})
}

// loaderStream runs the check sequence for one page load and pushes every
// state as an SSE "step" event, then a single "reveal" event.
func (s *Server) loaderStream(c *gin.Context) {
	defer s.metrics.StreamOpened("loader")()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx, cancel := s.streamContext(c.Request.Context())
	defer cancel()

	states := make(chan loader.State)
	done := make(chan error, 1)
	go func() {
		done <- s.sequence.Run(ctx, s.clock, func(st loader.State) {
			select {
			case states <- st:
			case <-ctx.Done():
			}
		})
		close(states)
	}()

	c.Stream(func(w io.Writer) bool {
		st, ok := <-states
		if !ok {
			return false
		}
		c.SSEvent("step", viewOf(s.sequence, st))
		return true
	})

	if err := <-done; err != nil {
		s.logger.Debug("loader stream closed early", zap.Error(err))
		return
	}
	c.SSEvent("reveal", gin.H{"elapsed_ms": (s.sequence.Total() + loader.RevealDelay).Milliseconds()})
	c.Writer.Flush()
}

func (s *Server) typewriterConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"phrases":            s.cycler.Phrases(),
		"type_interval_ms":   s.cycler.TypeInterval.Milliseconds(),
		"delete_interval_ms": s.cycler.DeleteInterval.Milliseconds(),
		"pause_ms":           s.cycler.Pause.Milliseconds(),
		"headline":           s.catalog.Profile.Headline,
		"reveal_interval_ms": typewriter.RevealInterval.Milliseconds(),
	})
}

// typewriterSocket streams typewriter frames over a WebSocket. The default
// variant cycles the hero phrases until the client goes away; variant=reveal
// types the about headline once and closes.
func (s *Server) typewriterSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()
	defer s.metrics.StreamOpened("typewriter")()

	ctx, cancel := s.streamContext(c.Request.Context())
	defer cancel()

	// The reader notices the client closing and cancels the stream.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(f typewriter.Frame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteJSON(f)
	}

	if c.Query("variant") == "reveal" {
		r := typewriter.NewReveal(s.catalog.Profile.Headline, 0)
		err = r.Run(ctx, s.clock, func(text string) {
			if werr := send(typewriter.Frame{Text: text}); werr != nil {
				cancel()
			}
		})
		if err == nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "revealed"))
		}
		return
	}

	err = s.cycler.Run(ctx, s.clock, send)
	if err != nil && ctx.Err() == nil {
		s.logger.Debug("typewriter stream ended", zap.Error(err))
	}
}

// sceneFrames samples the decorative scene. t is the start time in seconds;
// frames and step (seconds) request a batch for client-side playback.
func (s *Server) sceneFrames(c *gin.Context) {
	t, err := strconv.ParseFloat(c.DefaultQuery("t", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "t must be a number of seconds"})
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("frames", "1"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frames must be a positive integer"})
		return
	}
	if n > maxSceneFrames {
		n = maxSceneFrames
	}
	step, err := strconv.ParseFloat(c.DefaultQuery("step", "0.1"), 64)
	if err != nil || step <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "step must be a positive number of seconds"})
		return
	}

	frames := make([]scene.Frame, n)
	for i := range frames {
		frames[i] = scene.FrameAt(t + float64(i)*step)
	}
	c.JSON(http.StatusOK, gin.H{"shapes": scene.Shapes, "frames": frames})
}
