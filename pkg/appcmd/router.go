package appcmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"
	"go.uber.org/zap"
)

// ComponentHandler handles a message component interaction (button press,
// select menu choice).
type ComponentHandler func(ctx context.Context, itx *Interaction) error

// Hook observes an invocation before or after its handler runs.
type Hook func(ctx context.Context, itx *Interaction)

type componentRoute struct {
	id      string
	prefix  bool
	handler ComponentHandler
}

// Router receives gateway interactions and dispatches them to registered
// commands, component handlers and modals. Invocations run asynchronously on
// a bounded worker pool; registration is expected to happen before the
// session opens and is not synchronized against dispatch.
type Router struct {
	commands   map[string]*Command
	components []componentRoute
	modals     map[string]*Modal

	pool    *workerpool.WorkerPool
	logger  *zap.Logger
	timeout time.Duration

	onError  ErrorHandler
	preHook  Hook
	postHook Hook
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the router's logger.
func WithLogger(logger *zap.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// WithWorkers bounds how many invocations run concurrently. Zero disables
// the pool and runs handlers inline on the gateway goroutine.
func WithWorkers(n int) RouterOption {
	return func(r *Router) {
		if n <= 0 {
			r.pool = nil
			return
		}
		r.pool = workerpool.New(n)
	}
}

// WithErrorHandler sets the router-level error hook. It receives errors from
// commands without their own OnError, payload mismatches and lookup failures.
func WithErrorHandler(fn ErrorHandler) RouterOption {
	return func(r *Router) { r.onError = fn }
}

// WithInvocationHooks observes every command invocation: pre runs before the
// check, post runs after the handler completed without error.
func WithInvocationHooks(pre, post Hook) RouterOption {
	return func(r *Router) {
		r.preHook = pre
		r.postHook = post
	}
}

// WithInvocationTimeout bounds the context handed to handlers. Defaults to
// 15 minutes, the lifetime of an interaction token.
func WithInvocationTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.timeout = d }
}

// NewRouter returns a router with 8 workers and a 15 minute invocation
// timeout.
func NewRouter(opts ...RouterOption) *Router {
	router := &Router{
		commands: make(map[string]*Command),
		modals:   make(map[string]*Modal),
		pool:     workerpool.New(8),
		logger:   zap.NewNop(),
		timeout:  15 * time.Minute,
	}

	for _, opt := range opts {
		opt(router)
	}

	return router
}

// Register adds a command to the dispatch table. The table is flat: a type
// and name pair identifies one handler regardless of which guilds the
// command is registered in, so re-registering returns ErrDuplicateCommand.
func (r *Router) Register(cmd *Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	key := commandKey(cmd)
	if _, exists := r.commands[key]; exists {
		return fmt.Errorf("%w: %q in dispatch table", ErrDuplicateCommand, cmd.Name)
	}

	r.commands[key] = cmd

	return nil
}

// RegisterTree adds every command a tree holds.
func (r *Router) RegisterTree(tree *Tree) error {
	for _, cmd := range tree.Commands() {
		if err := r.Register(cmd); err != nil {
			return err
		}
	}

	return nil
}

// Component routes component interactions whose custom ID matches exactly.
func (r *Router) Component(customID string, fn ComponentHandler) {
	r.components = append(r.components, componentRoute{id: customID, handler: fn})
}

// ComponentPrefix routes component interactions whose custom ID starts with
// the given prefix. Exact routes win over prefix routes.
func (r *Router) ComponentPrefix(prefix string, fn ComponentHandler) {
	r.components = append(r.components, componentRoute{id: prefix, prefix: true, handler: fn})
}

// RegisterModal routes modal submissions with the modal's custom ID (exact,
// or as a prefix so state can be appended after it) to its OnSubmit handler.
func (r *Router) RegisterModal(modal *Modal) error {
	if err := modal.Validate(); err != nil {
		return err
	}

	if modal.OnSubmit == nil {
		return &ValidationError{Command: modal.CustomID, Field: "on_submit", Reason: "modal needs a submit handler"}
	}

	if _, exists := r.modals[modal.CustomID]; exists {
		return fmt.Errorf("%w: modal %q", ErrDuplicateCommand, modal.CustomID)
	}

	r.modals[modal.CustomID] = modal

	return nil
}

// Attach registers the router as the session's InteractionCreate handler and
// returns the remove function.
func (r *Router) Attach(session *discordgo.Session) func() {
	return session.AddHandler(r.HandleInteractionCreate)
}

// HandleInteractionCreate is the discordgo event handler entry point.
func (r *Router) HandleInteractionCreate(session *discordgo.Session, event *discordgo.InteractionCreate) {
	r.dispatch(session, session, event)
}

// Close drains the worker pool, waiting for in-flight invocations.
func (r *Router) Close() {
	if r.pool != nil {
		r.pool.StopWait()
	}
}

// dispatch routes one interaction. The responder is split from the session
// so tests can capture responses without a live REST client.
func (r *Router) dispatch(session *discordgo.Session, responder Responder, event *discordgo.InteractionCreate) {
	switch event.Type {
	case discordgo.InteractionPing:
		itx := &Interaction{Session: session, Event: event, responder: responder}
		if err := itx.Pong(); err != nil {
			r.logger.Error("failed to answer ping interaction", zap.Error(err))
		}
	case discordgo.InteractionApplicationCommand:
		r.dispatchCommand(session, responder, event)
	case discordgo.InteractionApplicationCommandAutocomplete:
		r.dispatchAutocomplete(session, responder, event)
	case discordgo.InteractionMessageComponent:
		r.dispatchComponent(session, responder, event)
	case discordgo.InteractionModalSubmit:
		r.dispatchModal(session, responder, event)
	default:
		r.logger.Warn("unhandled interaction type", zap.Int("type", int(event.Type)))
	}
}

func (r *Router) dispatchCommand(session *discordgo.Session, responder Responder, event *discordgo.InteractionCreate) {
	data := event.ApplicationCommandData()

	itx, err := r.bind(session, responder, event, &data)
	if err != nil {
		r.fail(context.Background(), fallbackInteraction(session, responder, event), err)
		return
	}

	r.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		r.invoke(ctx, itx)
	})
}

func (r *Router) invoke(ctx context.Context, itx *Interaction) {
	cmd := itx.command

	if r.preHook != nil {
		r.preHook(ctx, itx)
	}

	if cmd.Check != nil {
		ok, err := cmd.Check(ctx, itx)
		if err != nil {
			r.fail(ctx, itx, err)
			return
		}
		if !ok {
			return
		}
	}

	if cmd.Handler == nil {
		r.fail(ctx, itx, fmt.Errorf("command %q has no handler", cmd.Name))
		return
	}

	if err := cmd.Handler(ctx, itx); err != nil {
		r.fail(ctx, itx, err)
		return
	}

	if r.postHook != nil {
		r.postHook(ctx, itx)
	}
}

func (r *Router) dispatchAutocomplete(session *discordgo.Session, responder Responder, event *discordgo.InteractionCreate) {
	data := event.ApplicationCommandData()

	itx, err := r.bind(session, responder, event, &data)
	if err != nil {
		r.fail(context.Background(), fallbackInteraction(session, responder, event), err)
		return
	}

	if itx.focused == nil {
		r.fail(context.Background(), itx, &IncompatibleSignatureError{Command: itx.command.Name, Detail: "autocomplete payload has no focused option"})
		return
	}

	option := itx.command.option(itx.focused.Name)
	if option == nil || option.Autocomplete == nil {
		r.fail(context.Background(), itx, &IncompatibleSignatureError{Command: itx.command.Name, Detail: "no autocompleter for option " + itx.focused.Name})
		return
	}

	r.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		choices, err := option.Autocomplete(ctx, itx)
		if err != nil {
			r.fail(ctx, itx, err)
			return
		}

		if err := itx.RespondChoices(choices); err != nil {
			r.fail(ctx, itx, err)
		}
	})
}

func (r *Router) dispatchComponent(session *discordgo.Session, responder Responder, event *discordgo.InteractionCreate) {
	data := event.MessageComponentData()

	route, ok := r.componentRoute(data.CustomID)
	if !ok {
		r.logger.Debug("no route for component interaction", zap.String("custom_id", data.CustomID))
		return
	}

	itx := &Interaction{Session: session, Event: event, responder: responder}

	r.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := route.handler(ctx, itx); err != nil {
			r.fail(ctx, itx, err)
		}
	})
}

func (r *Router) componentRoute(customID string) (componentRoute, bool) {
	for _, route := range r.components {
		if !route.prefix && route.id == customID {
			return route, true
		}
	}

	for _, route := range r.components {
		if route.prefix && strings.HasPrefix(customID, route.id) {
			return route, true
		}
	}

	return componentRoute{}, false
}

func (r *Router) dispatchModal(session *discordgo.Session, responder Responder, event *discordgo.InteractionCreate) {
	data := event.ModalSubmitData()

	modal, ok := r.modals[data.CustomID]
	if !ok {
		for id, candidate := range r.modals {
			if strings.HasPrefix(data.CustomID, id) {
				modal = candidate
				ok = true
				break
			}
		}
	}

	if !ok {
		r.logger.Debug("no route for modal submission", zap.String("custom_id", data.CustomID))
		return
	}

	itx := &Interaction{Session: session, Event: event, responder: responder}
	values := modalValues(data)

	r.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := modal.OnSubmit(ctx, itx, values); err != nil {
			r.fail(ctx, itx, err)
		}
	})
}

// bind resolves the payload to a leaf command and attaches its options. A
// payload naming a command, subcommand or option the router does not know
// yields ErrUnknownCommand or an IncompatibleSignatureError.
func (r *Router) bind(
	session *discordgo.Session,
	responder Responder,
	event *discordgo.InteractionCreate,
	data *discordgo.ApplicationCommandInteractionData,
) (*Interaction, error) {
	cmdType := data.CommandType
	if cmdType == 0 {
		cmdType = discordgo.ChatApplicationCommand
	}

	cmd, ok := r.commands[fmt.Sprintf("%d/%s", cmdType, data.Name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (id %s)", ErrUnknownCommand, data.Name, data.ID)
	}

	leaf, payloadOptions, err := resolveCommandPath(cmd, data.Options)
	if err != nil {
		return nil, err
	}

	itx := &Interaction{
		Session:   session,
		Event:     event,
		responder: responder,
		command:   leaf,
		options:   make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(payloadOptions)),
		resolved:  data.Resolved,
		targetID:  data.TargetID,
	}

	for _, opt := range payloadOptions {
		if leaf.option(opt.Name) == nil {
			return nil, &IncompatibleSignatureError{Command: leaf.Name, Detail: "unknown option " + opt.Name}
		}

		itx.options[opt.Name] = opt
		if opt.Focused {
			itx.focused = opt
		}
	}

	return itx, nil
}

// resolveCommandPath walks subcommand-group and subcommand payload options
// down to the leaf command the user actually invoked.
func resolveCommandPath(
	cmd *Command,
	opts []*discordgo.ApplicationCommandInteractionDataOption,
) (*Command, []*discordgo.ApplicationCommandInteractionDataOption, error) {
	for len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup ||
		opts[0].Type == discordgo.ApplicationCommandOptionSubCommand) {
		sub := cmd.subcommand(opts[0].Name)
		if sub == nil {
			return nil, nil, &IncompatibleSignatureError{Command: cmd.Name, Detail: "unknown subcommand " + opts[0].Name}
		}

		cmd = sub
		opts = opts[0].Options
	}

	return cmd, opts, nil
}

func (r *Router) submit(task func()) {
	if r.pool == nil {
		task()
		return
	}

	r.pool.Submit(task)
}

// fail routes an error to the command's OnError when set, otherwise to the
// router-level error hook, otherwise the log.
func (r *Router) fail(ctx context.Context, itx *Interaction, err error) {
	if itx.command != nil && itx.command.OnError != nil {
		itx.command.OnError(ctx, itx, err)
		return
	}

	if r.onError != nil {
		r.onError(ctx, itx, err)
		return
	}

	r.logger.Error("interaction dispatch failed",
		zap.Error(err),
		zap.String("command", itx.commandName()),
		zap.String("guild_id", itx.GuildID()),
	)
}

// fallbackInteraction wraps an event whose command could not be resolved so
// error hooks can still respond to the user.
func fallbackInteraction(session *discordgo.Session, responder Responder, event *discordgo.InteractionCreate) *Interaction {
	return &Interaction{Session: session, Event: event, responder: responder}
}
