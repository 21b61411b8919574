package models

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"papertrader/logger"
	"papertrader/portfolio"
	"papertrader/pricing"
	"papertrader/session"
	"papertrader/trading"
)

// Field is the input that currently has keyboard focus.
type Field int

const (
	FieldMarket Field = iota
	FieldSymbol
	FieldAmount
	FieldBuy
	FieldSell
	fieldCount
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

type catalogState int

const (
	catalogLoading catalogState = iota
	catalogReady
	catalogFailed
)

// AppModel is the single screen of the simulator: order panel, holdings, history.
type AppModel struct {
	Width  int
	Height int

	Market pricing.Market
	Symbol string
	Amount string
	Focus  Field

	Status     string
	statusKind statusKind
	statusSeq  int

	// trades sent to the engine and not yet answered
	Pending  int
	ShowHelp bool

	catalog      catalogState
	catalogCount int

	rows       map[string]rowState
	rowGen     int
	cancelRows context.CancelFunc

	engine      *trading.Engine
	prices      trading.PriceSource
	loadCatalog func(context.Context) (int, error)
	paste       func() (string, error)
	messageTTL  time.Duration
	help        string
	logger      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// Options carries what the model needs from the rest of the program.
type Options struct {
	Engine      *trading.Engine
	Prices      trading.PriceSource
	LoadCatalog func(context.Context) (int, error)
	Market      pricing.Market
	MessageTTL  time.Duration
	Logger      zerolog.Logger
}

func NewAppModel(opts Options) *AppModel {
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), opts.Logger))

	m := &AppModel{
		Market:      opts.Market,
		Focus:       FieldSymbol,
		rows:        make(map[string]rowState),
		engine:      opts.Engine,
		prices:      opts.Prices,
		loadCatalog: opts.LoadCatalog,
		paste:       clipboard.ReadAll,
		messageTTL:  opts.MessageTTL,
		logger:      opts.Logger,
		ctx:         ctx,
		cancel:      cancel,
	}
	if m.Market == "" {
		m.Market = pricing.Crypto
	}
	if m.messageTTL <= 0 {
		m.messageTTL = 3 * time.Second
	}
	m.help = renderHelp(m.logger)
	return m
}

// NewSessionModel builds the model around an opened session.
func NewSessionModel(s *session.Session, logger zerolog.Logger) *AppModel {
	return NewAppModel(Options{
		Engine: s.Engine,
		Prices: s.Resolver,
		LoadCatalog: func(ctx context.Context) (int, error) {
			err := s.LoadCatalog(ctx)
			return s.Catalog.Len(), err
		},
		Market:     s.Market(),
		MessageTTL: s.Config.MessageTTL,
		Logger:     logger,
	})
}

// Bubble Tea interface methods
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadCatalogCmd(),
		m.refreshHoldings(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case catalogLoadedMsg:
		if msg.err != nil {
			m.catalog = catalogFailed
			return m, nil
		}
		m.catalog = catalogReady
		m.catalogCount = msg.count
		// crypto rows priced before the catalog arrived all failed
		if m.Market == pricing.Crypto {
			return m, m.refreshHoldings()
		}
		return m, nil

	case rowPriceMsg:
		m.applyRowPrice(msg)
		return m, nil

	case tradeCompletedMsg:
		return m.handleTradeCompleted(msg)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.Status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *AppModel) View() string {
	if m.ShowHelp {
		return m.helpView()
	}
	return m.mainView()
}

func (m *AppModel) handleTradeCompleted(msg tradeCompletedMsg) (tea.Model, tea.Cmd) {
	if m.Pending > 0 {
		m.Pending--
	}

	if msg.err != nil && !errors.Is(msg.err, trading.ErrNotSaved) {
		m.logger.Debug().Err(msg.err).Str("order", msg.order.String()).Msg("Trade rejected")
		return m, m.setStatus(trading.UserMessage(msg.err), statusError)
	}

	text, kind := trading.SuccessMessage(msg.result), statusSuccess
	if msg.err != nil {
		text, kind = text+" "+trading.UserMessage(msg.err), statusError
	}
	return m, tea.Batch(m.setStatus(text, kind), m.refreshHoldings())
}

// setStatus shows text and schedules its removal. A newer message restarts the timer.
func (m *AppModel) setStatus(text string, kind statusKind) tea.Cmd {
	m.statusSeq++
	m.Status = text
	m.statusKind = kind

	seq := m.statusSeq
	return tea.Tick(m.messageTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// submit parses the order panel and hands the order to the engine.
func (m *AppModel) submit(side portfolio.Side) tea.Cmd {
	order, err := trading.ParseOrder(side, m.Symbol, m.Amount, m.Market)
	if err != nil {
		return m.setStatus(trading.UserMessage(err), statusError)
	}
	m.Pending++
	return m.tradeCmd(order)
}

func (m *AppModel) quit() tea.Cmd {
	m.cancel()
	return tea.Quit
}

// Message types for Bubble Tea
type catalogLoadedMsg struct {
	count int
	err   error
}

type tradeCompletedMsg struct {
	order  trading.Order
	result trading.Result
	err    error
}

type rowPriceMsg struct {
	gen    int
	symbol string
	price  decimal.Decimal
	err    error
}

type clearStatusMsg struct{ seq int }

func (m *AppModel) loadCatalogCmd() tea.Cmd {
	if m.loadCatalog == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		count, err := m.loadCatalog(ctx)
		return catalogLoadedMsg{count: count, err: err}
	}
}

func (m *AppModel) tradeCmd(order trading.Order) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		result, err := engine.Execute(ctx, order)
		return tradeCompletedMsg{order: order, result: result, err: err}
	}
}
