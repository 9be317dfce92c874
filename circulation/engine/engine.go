package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation/circulation/features/command/addcopy"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/applyfine"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/borrowcopy"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/cataloguetitle"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/expirereservation"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/markcopyfound"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/markcopylost"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/placereservation"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/registermember"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/reinstatemember"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/renewloan"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/returncopy"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/settlefine"
	"github.com/AntonStoeckl/library-circulation/circulation/features/command/suspendmember"
	"github.com/AntonStoeckl/library-circulation/circulation/features/query/expiredpickups"
	"github.com/AntonStoeckl/library-circulation/circulation/features/query/memberaccount"
	"github.com/AntonStoeckl/library-circulation/circulation/features/query/titleavailability"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/shell/observable"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const instrumentationName = "circulation"

var ErrNilEventStore = errors.New("event store must not be nil")

// Circulation is the borrowing and queueing capability.
type Circulation interface {
	Borrow(ctx context.Context, memberID core.MemberIDString, titleID core.TitleIDString) (BorrowReceipt, error)
	Return(ctx context.Context, loanID core.LoanIDString) (ReturnReceipt, error)
	Renew(ctx context.Context, loanID core.LoanIDString) (LoanReceipt, error)
	Enqueue(ctx context.Context, memberID core.MemberIDString, titleID core.TitleIDString) (ReservationReceipt, error)
	Cancel(ctx context.Context, reservationID core.ReservationIDString) (ReleaseReceipt, error)
	Expire(ctx context.Context, reservationID core.ReservationIDString) (ReleaseReceipt, error)
}

// CatalogAdmin maintains titles and copies. Empty IDs are generated.
type CatalogAdmin interface {
	CatalogueTitle(ctx context.Context, title TitleDetails) (core.TitleIDString, error)
	AddCopy(ctx context.Context, titleID core.TitleIDString, copyID core.CopyIDString) (core.CopyIDString, error)
	MarkCopyLost(ctx context.Context, copyID core.CopyIDString) error
	MarkCopyFound(ctx context.Context, copyID core.CopyIDString) error
}

// MembershipAdmin maintains members and their balances. An empty member ID is generated.
type MembershipAdmin interface {
	RegisterMember(ctx context.Context, memberID core.MemberIDString, name string) (core.MemberIDString, error)
	SuspendMember(ctx context.Context, memberID core.MemberIDString, reason string) error
	ReinstateMember(ctx context.Context, memberID core.MemberIDString) error
	ApplyFine(ctx context.Context, memberID core.MemberIDString, amount decimal.Decimal) error
	SettleFine(ctx context.Context, memberID core.MemberIDString, amount decimal.Decimal) error
}

// Queries are the read models.
type Queries interface {
	TitleAvailability(ctx context.Context, titleID core.TitleIDString) (titleavailability.TitleAvailability, error)
	MemberAccount(ctx context.Context, memberID core.MemberIDString) (memberaccount.MemberAccount, error)
	ExpiredPickups(ctx context.Context) (expiredpickups.ExpiredPickups, error)
}

// TitleDetails is the input of CatalogueTitle.
type TitleDetails struct {
	TitleID core.TitleIDString
	ISBN    string
	Name    string
	Author  string
}

// Engine implements Circulation, CatalogAdmin, MembershipAdmin and Queries on one event store.
type Engine struct {
	policy core.Policy
	clock  Clock
	newID  func() string
	instr  eventstore.Instrumentation

	catalogueTitle    shell.CoreCommandHandler[cataloguetitle.Command]
	addCopy           shell.CoreCommandHandler[addcopy.Command]
	markCopyLost      shell.CoreCommandHandler[markcopylost.Command]
	markCopyFound     shell.CoreCommandHandler[markcopyfound.Command]
	registerMember    shell.CoreCommandHandler[registermember.Command]
	suspendMember     shell.CoreCommandHandler[suspendmember.Command]
	reinstateMember   shell.CoreCommandHandler[reinstatemember.Command]
	applyFine         shell.CoreCommandHandler[applyfine.Command]
	settleFine        shell.CoreCommandHandler[settlefine.Command]
	borrowCopy        shell.CoreCommandHandler[borrowcopy.Command]
	returnCopy        shell.CoreCommandHandler[returncopy.Command]
	renewLoan         shell.CoreCommandHandler[renewloan.Command]
	placeReservation  shell.CoreCommandHandler[placereservation.Command]
	cancelReservation shell.CoreCommandHandler[cancelreservation.Command]
	expireReservation shell.CoreCommandHandler[expirereservation.Command]

	titleAvailability shell.CoreQueryHandler[titleavailability.Query, titleavailability.TitleAvailability]
	memberAccount     shell.CoreQueryHandler[memberaccount.Query, memberaccount.MemberAccount]
	expiredPickups    shell.CoreQueryHandler[expiredpickups.Query, expiredpickups.ExpiredPickups]
}

var (
	_ Circulation     = (*Engine)(nil)
	_ CatalogAdmin    = (*Engine)(nil)
	_ MembershipAdmin = (*Engine)(nil)
	_ Queries         = (*Engine)(nil)
)

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	clock        Clock
	newID        func() string
	retryOptions []shell.RetryOption
	instr        eventstore.Instrumentation
}

// WithClock replaces the SystemClock.
func WithClock(clock Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithIDGenerator replaces random UUIDs for loan and reservation IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *settings) {
		s.newID = newID
	}
}

// WithRetryOptions configures the concurrency-conflict retry of every command handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(s *settings) {
		s.retryOptions = opts
	}
}

func WithLogger(logger shell.Logger) Option {
	return func(s *settings) {
		s.instr.Logger = logger
	}
}

func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(s *settings) {
		s.instr.ContextualLogger = logger
	}
}

func WithMetrics(collector shell.MetricsCollector) Option {
	return func(s *settings) {
		s.instr.Metrics = collector
	}
}

func WithTracing(collector shell.TracingCollector) Option {
	return func(s *settings) {
		s.instr.Tracing = collector
	}
}

// New wires every feature handler to the store.
func New(store shell.EventStore, policy core.Policy, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilEventStore
	}

	s := settings{
		clock: SystemClock{},
		newID: uuid.NewString,
		instr: eventstore.Instrumentation{Engine: instrumentationName},
	}

	for _, opt := range opts {
		opt(&s)
	}

	b := &builder{settings: s}

	e := &Engine{
		policy: policy,
		clock:  s.clock,
		newID:  s.newID,
		instr:  s.instr,

		catalogueTitle: wrapCommand[cataloguetitle.Command](b, cataloguetitle.NewCommandHandler(store,
			cataloguetitle.WithRetryOptions(b.retry(cataloguetitle.Command{})...))),
		addCopy: wrapCommand[addcopy.Command](b, addcopy.NewCommandHandler(store, policy,
			addcopy.WithRetryOptions(b.retry(addcopy.Command{})...))),
		markCopyLost: wrapCommand[markcopylost.Command](b, markcopylost.NewCommandHandler(store, policy,
			markcopylost.WithRetryOptions(b.retry(markcopylost.Command{})...))),
		markCopyFound: wrapCommand[markcopyfound.Command](b, markcopyfound.NewCommandHandler(store, policy,
			markcopyfound.WithRetryOptions(b.retry(markcopyfound.Command{})...))),
		registerMember: wrapCommand[registermember.Command](b, registermember.NewCommandHandler(store,
			registermember.WithRetryOptions(b.retry(registermember.Command{})...))),
		suspendMember: wrapCommand[suspendmember.Command](b, suspendmember.NewCommandHandler(store,
			suspendmember.WithRetryOptions(b.retry(suspendmember.Command{})...))),
		reinstateMember: wrapCommand[reinstatemember.Command](b, reinstatemember.NewCommandHandler(store,
			reinstatemember.WithRetryOptions(b.retry(reinstatemember.Command{})...))),
		applyFine: wrapCommand[applyfine.Command](b, applyfine.NewCommandHandler(store,
			applyfine.WithRetryOptions(b.retry(applyfine.Command{})...))),
		settleFine: wrapCommand[settlefine.Command](b, settlefine.NewCommandHandler(store,
			settlefine.WithRetryOptions(b.retry(settlefine.Command{})...))),
		borrowCopy: wrapCommand[borrowcopy.Command](b, borrowcopy.NewCommandHandler(store, policy,
			borrowcopy.WithRetryOptions(b.retry(borrowcopy.Command{})...))),
		returnCopy: wrapCommand[returncopy.Command](b, returncopy.NewCommandHandler(store, policy,
			returncopy.WithRetryOptions(b.retry(returncopy.Command{})...))),
		renewLoan: wrapCommand[renewloan.Command](b, renewloan.NewCommandHandler(store, policy,
			renewloan.WithRetryOptions(b.retry(renewloan.Command{})...))),
		placeReservation: wrapCommand[placereservation.Command](b, placereservation.NewCommandHandler(store, policy,
			placereservation.WithRetryOptions(b.retry(placereservation.Command{})...))),
		cancelReservation: wrapCommand[cancelreservation.Command](b, cancelreservation.NewCommandHandler(store, policy,
			cancelreservation.WithRetryOptions(b.retry(cancelreservation.Command{})...))),
		expireReservation: wrapCommand[expirereservation.Command](b, expirereservation.NewCommandHandler(store, policy,
			expirereservation.WithRetryOptions(b.retry(expirereservation.Command{})...))),

		titleAvailability: wrapQuery[titleavailability.Query, titleavailability.TitleAvailability](b, titleavailability.NewQueryHandler(store)),
		memberAccount:     wrapQuery[memberaccount.Query, memberaccount.MemberAccount](b, memberaccount.NewQueryHandler(store, policy)),
		expiredPickups:    wrapQuery[expiredpickups.Query, expiredpickups.ExpiredPickups](b, expiredpickups.NewQueryHandler(store)),
	}

	if b.err != nil {
		return nil, b.err
	}

	return e, nil
}

// builder collects wrapper construction errors so New can wire handlers in one expression.
type builder struct {
	settings
	err error
}

func (b *builder) retry(command shell.Command) []shell.RetryOption {
	opts := append([]shell.RetryOption{}, b.retryOptions...)
	if b.instr.Metrics != nil {
		opts = append(opts, shell.WithMetrics(b.instr.Metrics, command.CommandType()))
	}

	return opts
}

func wrapCommand[C shell.Command](b *builder, handler shell.CoreCommandHandler[C]) shell.CoreCommandHandler[C] {
	opts := make([]observable.CommandOption[C], 0, 4)

	if b.instr.Metrics != nil {
		opts = append(opts, observable.WithCommandMetrics[C](b.instr.Metrics))
	}

	if b.instr.Tracing != nil {
		opts = append(opts, observable.WithCommandTracing[C](b.instr.Tracing))
	}

	if b.instr.ContextualLogger != nil {
		opts = append(opts, observable.WithCommandContextualLogging[C](b.instr.ContextualLogger))
	}

	if b.instr.Logger != nil {
		opts = append(opts, observable.WithCommandLogging[C](b.instr.Logger))
	}

	wrapper, err := observable.NewCommandWrapper(handler, opts...)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return handler
	}

	return wrapper
}

func wrapQuery[Q shell.Query, R shell.QueryResult](b *builder, handler shell.CoreQueryHandler[Q, R]) shell.CoreQueryHandler[Q, R] {
	opts := make([]observable.QueryOption[Q, R], 0, 4)

	if b.instr.Metrics != nil {
		opts = append(opts, observable.WithQueryMetrics[Q, R](b.instr.Metrics))
	}

	if b.instr.Tracing != nil {
		opts = append(opts, observable.WithQueryTracing[Q, R](b.instr.Tracing))
	}

	if b.instr.ContextualLogger != nil {
		opts = append(opts, observable.WithQueryContextualLogging[Q, R](b.instr.ContextualLogger))
	}

	if b.instr.Logger != nil {
		opts = append(opts, observable.WithQueryLogging[Q, R](b.instr.Logger))
	}

	wrapper, err := observable.NewQueryWrapper(handler, opts...)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return handler
	}

	return wrapper
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}

func (e *Engine) idOr(id string) string {
	if id != "" {
		return id
	}

	return e.newID()
}
