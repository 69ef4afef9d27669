// Package session is the wallet session controller. Each exported method is
// one user action: it checks that a wallet is present, runs the action's
// precondition, delegates to the contract binding and reports the outcome
// to a Sink as exactly one notification.
//
// The controller keeps no mutable state. Accounts and the active network
// are read from the wallet on every call, so actions may run concurrently.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/Mohsinsiddi/fundme/internal/contract"
	"github.com/Mohsinsiddi/fundme/internal/notify"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// Confirmations awaited after every transaction.
const Confirmations = 1

// Contract is the subset of the FundMe binding the controller drives.
type Contract interface {
	Balance(ctx context.Context) (*big.Int, error)
	Fund(ctx context.Context, tag *big.Int, delegate common.Address, value *big.Int) (common.Hash, error)
	Withdraw(ctx context.Context) (common.Hash, error)
}

// Binder binds the contract at address through the wallet. from is nil for
// read-only use.
type Binder func(wallet *provider.Browser, address common.Address, from *common.Address) Contract

func bindFundMe(wallet *provider.Browser, address common.Address, from *common.Address) Contract {
	fm := contract.NewFundMe(address, wallet)
	if from != nil {
		fm = fm.WithSigner(*from)
	}
	return fm
}

// Controller runs the four user actions against one wallet provider.
type Controller struct {
	wallet   provider.Provider
	sink     Sink
	log      zerolog.Logger
	policy   SwitchFailurePolicy
	target   chain.Network
	contract common.Address
	poll     time.Duration
	bind     Binder
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option { return func(c *Controller) { c.log = log } }

// WithSwitchFailurePolicy sets what Connect does when switching fails.
func WithSwitchFailurePolicy(p SwitchFailurePolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithTarget replaces the target network.
func WithTarget(n chain.Network) Option { return func(c *Controller) { c.target = n } }

// WithContractAddress sets the FundMe deployment.
func WithContractAddress(addr common.Address) Option {
	return func(c *Controller) { c.contract = addr }
}

// WithPollInterval sets how often receipts are polled.
func WithPollInterval(d time.Duration) Option { return func(c *Controller) { c.poll = d } }

// WithBinder replaces the contract binding.
func WithBinder(b Binder) Option { return func(c *Controller) { c.bind = b } }

// New creates a controller. A nil wallet means no provider capability is
// present; every action then reports ErrProviderAbsent.
func New(wallet provider.Provider, sink Sink, opts ...Option) *Controller {
	c := &Controller{
		wallet:   wallet,
		sink:     sink,
		log:      zerolog.Nop(),
		policy:   PolicyAbort,
		target:   chain.Target(),
		contract: common.HexToAddress(contract.DefaultAddress),
		poll:     contract.DefaultPollInterval,
		bind:     bindFundMe,
	}
	for _, o := range opts {
		o(c)
	}
	if c.sink == nil {
		c.sink = NopSink{}
	}
	return c
}

// Target returns the network the controller steers the wallet to.
func (c *Controller) Target() chain.Network { return c.target }

// ContractAddress returns the bound FundMe address.
func (c *Controller) ContractAddress() common.Address { return c.contract }

// Connect requests account access and moves the wallet to the target
// network, registering it first if the wallet does not know it.
func (c *Controller) Connect(ctx context.Context) error {
	const a = ActionConnect
	b, ok := c.begin(a)
	if !ok {
		return c.fail(a, ErrProviderAbsent)
	}

	if _, err := b.RequestAccounts(ctx); err != nil {
		return c.fail(a, classify(ErrProviderCall, err))
	}
	id, err := b.ChainID(ctx)
	if err != nil {
		return c.fail(a, wrap(ErrProviderCall, err))
	}

	var switchErr error
	if id != c.target.ChainID {
		c.log.Info().Int64("from", id).Int64("to", c.target.ChainID).Msg("switching network")
		sw := &networkSwitch{wallet: b, target: c.target, log: c.log}
		if switchErr = sw.run(ctx); switchErr != nil {
			if c.policy != PolicyProceed {
				return c.fail(a, switchErr)
			}
			c.log.Warn().Err(switchErr).Msg("network switch failed, proceeding")
		}
	}

	accounts, err := b.Accounts(ctx)
	if err != nil {
		return c.fail(a, wrap(ErrProviderCall, err))
	}
	c.sink.SetLabel(a, LabelConnected)
	c.log.Info().Interface("accounts", accounts).Msg("connected")

	if switchErr != nil {
		c.done(a, notify.Warning, fmt.Sprintf("Connected, but not on %s: %v", c.target.Name, switchErr))
		return nil
	}
	c.done(a, notify.Success, "Connected to "+c.target.Name)
	return nil
}

// Balance reads the contract's native balance and returns it in ether.
func (c *Controller) Balance(ctx context.Context) (string, error) {
	const a = ActionBalance
	b, ok := c.begin(a)
	if !ok {
		return "", c.fail(a, ErrProviderAbsent)
	}

	wei, err := c.bind(b, c.contract, nil).Balance(ctx)
	if err != nil {
		return "", c.fail(a, wrap(ErrQueryFailed, err))
	}
	bal := chain.FormatEther(wei)
	c.log.Info().Str("contract", c.contract.Hex()).Str("balance", bal).Msg("balance")
	c.done(a, notify.Success, fmt.Sprintf("Contract balance: %s %s", bal, c.target.Currency.Symbol))
	return bal, nil
}

// Fund sends amount ether to the contract's fund entry point and waits for
// one confirmation.
func (c *Controller) Fund(ctx context.Context, amount string) (common.Hash, error) {
	const a = ActionFund
	b, ok := c.begin(a)
	if !ok {
		return common.Hash{}, c.fail(a, ErrProviderAbsent)
	}

	from, err := c.signingSession(ctx, b)
	if err != nil {
		return common.Hash{}, c.fail(a, err)
	}
	value, err := chain.ParseEther(amount)
	if err != nil {
		return common.Hash{}, c.fail(a, wrap(ErrInvalidAmount, err))
	}
	if value.Sign() < 0 {
		return common.Hash{}, c.fail(a, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount))
	}
	if err := c.checkNetwork(ctx, b); err != nil {
		return common.Hash{}, c.fail(a, err)
	}

	c.log.Info().Str("amount", amount).Str("from", from.Hex()).Msg("funding")
	hash, err := c.bind(b, c.contract, &from).Fund(ctx, big.NewInt(contract.FundTag), contract.NullAddress, value)
	if err != nil {
		return common.Hash{}, c.fail(a, classifySend(err))
	}
	if err := c.confirm(ctx, a, b, hash); err != nil {
		return hash, c.fail(a, err)
	}
	c.done(a, notify.Success, fmt.Sprintf("Funded %s %s (%s)", amount, c.target.Currency.Symbol, c.txRef(hash)))
	return hash, nil
}

// Withdraw calls the contract's withdraw entry point and waits for one
// confirmation.
func (c *Controller) Withdraw(ctx context.Context) (common.Hash, error) {
	const a = ActionWithdraw
	b, ok := c.begin(a)
	if !ok {
		return common.Hash{}, c.fail(a, ErrProviderAbsent)
	}

	from, err := c.signingSession(ctx, b)
	if err != nil {
		return common.Hash{}, c.fail(a, err)
	}
	if err := c.checkNetwork(ctx, b); err != nil {
		return common.Hash{}, c.fail(a, err)
	}

	c.log.Info().Str("from", from.Hex()).Msg("withdrawing")
	hash, err := c.bind(b, c.contract, &from).Withdraw(ctx)
	if err != nil {
		return common.Hash{}, c.fail(a, classifySend(err))
	}
	if err := c.confirm(ctx, a, b, hash); err != nil {
		return hash, c.fail(a, err)
	}
	c.done(a, notify.Success, "Withdrawn ("+c.txRef(hash)+")")
	return hash, nil
}

// begin checks for the wallet. When it is absent the action's button gets
// the install prompt and nothing else is called.
func (c *Controller) begin(a Action) (*provider.Browser, bool) {
	if c.wallet == nil {
		c.sink.SetLabel(a, LabelInstall)
		return nil, false
	}
	c.sink.Progress(a, Requesting)
	return provider.NewBrowser(c.wallet), true
}

// signingSession asks for account access and returns the first account.
func (c *Controller) signingSession(ctx context.Context, b *provider.Browser) (common.Address, error) {
	accounts, err := b.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, classify(ErrProviderCall, err)
	}
	if len(accounts) == 0 {
		return common.Address{}, fmt.Errorf("%w: wallet returned no accounts", ErrProviderCall)
	}
	return accounts[0], nil
}

func (c *Controller) checkNetwork(ctx context.Context, b *provider.Browser) error {
	id, err := b.ChainID(ctx)
	if err != nil {
		return wrap(ErrProviderCall, err)
	}
	if id != c.target.ChainID {
		return fmt.Errorf("%w: on chain %d, want %s (%d); run connect first",
			ErrWrongNetwork, id, c.target.Name, c.target.ChainID)
	}
	return nil
}

func (c *Controller) confirm(ctx context.Context, a Action, b *provider.Browser, hash common.Hash) error {
	c.sink.Progress(a, Confirming)
	c.log.Info().Str("hash", hash.Hex()).Msg("waiting for confirmation")
	r, err := contract.WaitMined(ctx, b, hash, Confirmations, c.poll)
	switch {
	case errors.Is(err, contract.ErrReverted):
		return wrap(ErrReverted, err)
	case err != nil:
		return wrap(ErrConfirmationFailed, err)
	}
	c.log.Info().Str("hash", hash.Hex()).Uint64("block", uint64(r.BlockNumber)).Msg("confirmed")
	return nil
}

func (c *Controller) txRef(hash common.Hash) string {
	if u := c.target.TxURL(hash.Hex()); u != "" {
		return u
	}
	return hash.Hex()
}

// fail reports err as the action's single notification and returns it.
func (c *Controller) fail(a Action, err error) error {
	c.log.Error().Err(err).Stringer("action", a).Msg("action failed")
	if !errors.Is(err, ErrProviderAbsent) {
		c.sink.Progress(a, Failed)
	}
	c.sink.Notify(notify.Error, err.Error())
	if !errors.Is(err, ErrProviderAbsent) {
		c.sink.Progress(a, Idle)
	}
	return err
}

func (c *Controller) done(a Action, kind notify.Kind, text string) {
	c.sink.Notify(kind, text)
	c.sink.Progress(a, Idle)
}
