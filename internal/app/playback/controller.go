package playback

import (
	"context"
	"io"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/app/catalog"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/app/queue"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/audio"
)

// Errors
var (
	ErrUnrecognizedCommand = errors.New("unrecognized command")
	ErrEmptyCatalog        = errors.New("catalog has no playable tracks")
)

// errExit signals that input ended or the user asked to leave.
var errExit = errors.New("exit requested")

const menu = `***********************
Enter s to skip song
Enter p to pause or resume
Enter e to exit this program
Enter a to add a song to the queue
Enter v to display the song queue
***********************
`

// Catalog is the selectable track list.
type Catalog interface {
	Size() int
	All() iter.Seq2[int, track.Track]
	Select(input string) ([]track.Track, error)
}

// Transcoder converts a track to a renderable handle.
type Transcoder interface {
	ToPlayable(ctx context.Context, t track.Track) (audio.Handle, error)
}

// Renderer starts rendering a handle.
type Renderer interface {
	Play(h audio.Handle) (audio.Playback, error)
}

// Terminal is the line based user surface.
type Terminal interface {
	// Prompt shows message and blocks for one line of input. io.EOF means input ended.
	Prompt(ctx context.Context, message string) (string, error)
	Println(a ...any)
	Printf(format string, a ...any)
	// Banner shows a framed block of text.
	Banner(lines ...string)
}

// Messages holds the texts shown around selections.
type Messages struct {
	Intro        string `yaml:"intro" default:"Here is a list of your songs that are available to play.\n\nPick the number corresponding to the song you want to play."`
	Instructions string `yaml:"instructions" default:"If you want to play a series of songs in succession, just separate the numbers with a comma!"`
	QueueEmpty   string `yaml:"queue_empty" default:"Your music queue is now empty. Please choose new songs to play."`
	Add          string `yaml:"add" default:"Which song/songs do you want to add to the queue?"`
}

// Config holds controller configuration.
type Config struct {
	Messages Messages
	Listener func(Event) // Optional, called synchronously for every event
}

// Controller drives the select, enqueue, play and command cycle.
// It is single threaded: every method must be called from the same goroutine.
type Controller struct {
	catalog    Catalog
	queue      *queue.Queue
	transcoder Transcoder
	renderer   Renderer
	term       Terminal

	state    State
	current  *track.Track
	playback audio.Playback
	paused   bool

	messages  Messages
	listener  func(Event)
	sessionID string
	log       zerolog.Logger
}

// NewController creates a controller in the Idle state with an empty queue.
func NewController(cat Catalog, transcoder Transcoder, renderer Renderer, term Terminal, cfg Config) *Controller {
	messages := cfg.Messages
	if err := defaults.Set(&messages); err != nil {
		zlog.Warn().Err(err).Msg("playback: failed to apply message defaults")
	}

	sessionID := uuid.New().String()
	return &Controller{
		catalog:    cat,
		queue:      queue.New(),
		transcoder: transcoder,
		renderer:   renderer,
		term:       term,
		state:      StateIdle,
		messages:   messages,
		listener:   cfg.Listener,
		sessionID:  sessionID,
		log:        zlog.With().Str("session_id", sessionID).Logger(),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Current returns the track being rendered.
func (c *Controller) Current() (track.Track, bool) {
	if c.current == nil {
		return track.Track{}, false
	}
	return *c.current, true
}

// Queue returns the pending queue.
func (c *Controller) Queue() *queue.Queue {
	return c.queue
}

// SessionID returns the ID attached to this controller's log lines.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Run executes a whole session: initial selection, confirmation, then the command loop
// until exit, end of input, or a declined recovery.
// Source, transcoding and rendering failures end the session with an error.
func (c *Controller) Run(ctx context.Context) error {
	err := c.run(ctx)
	if errors.Is(err, errExit) {
		c.exit()
		return nil
	}
	if err != nil {
		c.stopPlayback()
	}
	return err
}

func (c *Controller) run(ctx context.Context) error {
	if c.catalog.Size() == 0 {
		c.term.Println("No playable tracks in this playlist.")
		return ErrEmptyCatalog
	}

	c.term.Banner(c.messages.Intro, "", c.messages.Instructions)
	if err := c.selectTracks(ctx); err != nil {
		return err
	}

	play, err := c.confirm(ctx)
	if err != nil {
		return err
	}
	if !play {
		c.term.Println("ok")
		c.setState(StateIdle)
		return nil
	}

	if err := c.PlayNext(ctx); err != nil {
		return err
	}

	for c.state == StatePlaying || c.state == StateStopped {
		if err := c.Poll(ctx); err != nil {
			return err
		}
		if c.state != StatePlaying && c.state != StateStopped {
			break
		}

		cmd, err := c.prompt(ctx, menu)
		if err != nil {
			return err
		}

		err = c.Handle(ctx, cmd)
		if errors.Is(err, ErrUnrecognizedCommand) {
			c.term.Println("\nInvalid command")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Select resolves a selection against the catalog and enqueues it in order.
// A failing selection enqueues nothing.
func (c *Controller) Select(input string) error {
	tracks, err := c.catalog.Select(input)
	if err != nil {
		return err
	}

	for _, t := range tracks {
		c.queue.Enqueue(t)
	}
	c.log.Debug().Msgf("playback: enqueued %d tracks, queue=%d", len(tracks), c.queue.Len())
	c.emit(Event{Type: EventTracksQueued, State: c.state, Count: len(tracks)})

	if c.current == nil && (c.state == StateIdle || c.state == StateSelecting) {
		c.setState(StateQueued)
	}
	return nil
}

// PlayNext dequeues the next track and starts it. An empty queue starts recovery:
// the user picks new tracks and confirms, or declines and the controller goes Idle.
func (c *Controller) PlayNext(ctx context.Context) error {
	t, ok := c.queue.Dequeue()
	if !ok {
		c.emit(Event{Type: EventQueueEmpty, State: c.state})

		play, err := c.recover(ctx)
		if err != nil {
			return err
		}
		if !play {
			return nil
		}
		if t, ok = c.queue.Dequeue(); !ok {
			return errors.AssertionFailedf("queue empty after recovery")
		}
	}
	return c.play(ctx, t)
}

// Poll checks the renderer once. A track that finished on its own is stopped and the
// next one is started as if it had been skipped.
func (c *Controller) Poll(ctx context.Context) error {
	if c.state != StatePlaying || c.playback == nil || c.playback.IsPlaying() {
		return nil
	}
	return c.finish(ctx)
}

// finish records the natural end of the current track and advances the queue.
func (c *Controller) finish(ctx context.Context) error {
	finished := c.current
	c.stopPlayback()
	c.setState(StateStopped)
	c.log.Info().Msgf("playback: finished %q", finished.Title)
	c.emit(Event{Type: EventTrackEnded, Track: finished, State: c.state})

	return c.PlayNext(ctx)
}

// Handle executes one in-playback command. Commands are trimmed and case insensitive.
// Unknown commands return ErrUnrecognizedCommand and leave the state unchanged.
func (c *Controller) Handle(ctx context.Context, cmd string) error {
	if c.state == StateExited {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case "s":
		return c.skip(ctx)
	case "e":
		c.exit()
		return nil
	case "a":
		return c.add(ctx)
	case "v":
		c.showQueue("These songs are in your queue:")
		return nil
	case "p":
		return c.togglePause(ctx)
	default:
		return errors.Wrapf(ErrUnrecognizedCommand, "%q", cmd)
	}
}

func (c *Controller) skip(ctx context.Context) error {
	if skipped := c.current; skipped != nil {
		c.stopPlayback()
		c.setState(StateStopped)
		c.log.Info().Msgf("playback: skipped %q", skipped.Title)
		c.emit(Event{Type: EventTrackSkipped, Track: skipped, State: c.state})
	}
	return c.PlayNext(ctx)
}

func (c *Controller) add(ctx context.Context) error {
	previous := c.state
	c.term.Println(c.messages.Add)
	if err := c.selectTracks(ctx); err != nil {
		return err
	}
	c.setState(previous)
	return nil
}

// togglePause pauses or resumes the current track. A track that ended while the menu
// was waiting for input is finished instead of paused.
func (c *Controller) togglePause(ctx context.Context) error {
	switch {
	case c.playback == nil:
		c.term.Println("Nothing is playing.")
	case !c.paused && !c.playback.IsPlaying():
		return c.finish(ctx)
	case c.paused:
		c.playback.Resume()
		c.paused = false
		c.term.Printf("\nResumed: %s\n\n", c.current.Label())
		c.setState(StatePlaying)
	default:
		c.playback.Pause()
		c.paused = true
		c.term.Printf("\nPaused: %s (enter p to resume)\n\n", c.current.Label())
		c.setState(StateStopped)
	}
	return nil
}

// recover runs the empty queue path: Idle, Selecting, Queued and the play confirmation.
func (c *Controller) recover(ctx context.Context) (bool, error) {
	c.setState(StateIdle)
	c.term.Println(c.messages.QueueEmpty)
	if err := c.selectTracks(ctx); err != nil {
		return false, err
	}

	play, err := c.confirm(ctx)
	if err != nil {
		return false, err
	}
	if !play {
		c.term.Println("ok")
		c.setState(StateIdle)
	}
	return play, nil
}

// selectTracks shows the catalog and prompts until a selection is enqueued.
func (c *Controller) selectTracks(ctx context.Context) error {
	c.setState(StateSelecting)
	for {
		c.showCatalog()

		input, err := c.prompt(ctx, "\nEnter your choices here: ")
		if err != nil {
			return err
		}

		err = c.Select(input)
		if err == nil {
			break
		}
		if errors.Is(err, catalog.ErrIndexOutOfRange) ||
			errors.Is(err, catalog.ErrInvalidSelection) ||
			errors.Is(err, catalog.ErrEmptySelection) {
			c.term.Printf("\nInvalid selection: %v\n", err)
			continue
		}
		return err
	}

	c.term.Println()
	c.showQueue("These songs are on your song queue:")
	return nil
}

func (c *Controller) confirm(ctx context.Context) (bool, error) {
	for {
		answer, err := c.prompt(ctx, "\nPlay music now? (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.term.Println("Please enter y or n.")
	}
}

func (c *Controller) play(ctx context.Context, t track.Track) error {
	h, err := c.transcoder.ToPlayable(ctx, t)
	if err != nil {
		return errors.Wrapf(err, "failed to prepare %q", t.Title)
	}

	pb, err := c.renderer.Play(h)
	if err != nil {
		return errors.Wrapf(err, "failed to play %q", t.Title)
	}

	c.current = &t
	c.playback = pb
	c.paused = false
	c.setState(StatePlaying)

	c.term.Printf("\nNow playing: %s\n\n", t.Label())
	c.log.Info().Msgf("playback: started %q (%s), queue=%d", t.Title, t.Source, c.queue.Len())
	c.emit(Event{Type: EventTrackStarted, Track: c.current, State: c.state})
	return nil
}

func (c *Controller) exit() {
	c.stopPlayback()
	c.setState(StateExited)
	c.term.Println("Music Player Exited.")
}

// stopPlayback stops and forgets the current render, if any.
func (c *Controller) stopPlayback() {
	if c.playback != nil {
		if err := c.playback.Stop(); err != nil {
			c.log.Warn().Err(err).Msg("playback: failed to stop renderer")
		}
	}
	c.playback = nil
	c.current = nil
	c.paused = false
}

// prompt reads one line. End of input and cancellation both mean exit.
func (c *Controller) prompt(ctx context.Context, message string) (string, error) {
	if ctx.Err() != nil {
		return "", errors.Mark(ctx.Err(), errExit)
	}

	line, err := c.term.Prompt(ctx, message)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", errors.Mark(err, errExit)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to read input")
	}
	return line, nil
}

func (c *Controller) showCatalog() {
	for i, t := range c.catalog.All() {
		c.term.Printf("%d) %s - %s\n", i, t.Title, t.Artist)
	}
}

func (c *Controller) showQueue(message string) {
	c.term.Println(message)
	if c.queue.IsEmpty() {
		c.term.Println("No Tracks")
		return
	}

	i := 1
	for t := range c.queue.All() {
		c.term.Printf("%d) %s\n", i, t.Label())
		i++
	}
	c.term.Println("End")
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.log.Debug().Msgf("playback: %s -> %s", c.state, s)
	c.state = s
	c.emit(Event{Type: EventStateChanged, Track: c.current, State: s})
}

func (c *Controller) emit(e Event) {
	if c.listener != nil {
		c.listener(e)
	}
}
