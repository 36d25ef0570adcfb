package cipher

import (
	"fmt"
	"log/slog"

	"github.com/skobkin/cipherbridge/internal/bridge"
)

// Exchanger sends one command and returns the reply lines. *bridge.Bridge implements it.
type Exchanger interface {
	Exchange(command string) ([]bridge.ReplyLine, error)
}

// Step is one command of an operation together with the device's replies.
type Step struct {
	Name    string
	Command string
	Replies []bridge.ReplyLine
}

// Result holds the load, run and fetch steps in order plus the interpreted
// output of the fetch step.
type Result struct {
	Op     Operation
	Steps  []Step
	Output []Output
}

// Client runs encrypt and decrypt operations over an Exchanger.
type Client struct {
	ex     Exchanger
	logger *slog.Logger
}

func NewClient(ex Exchanger, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.With("component", "cipher")
	}

	return &Client{ex: ex, logger: logger}
}

// Encrypt loads a 16-character plaintext, runs the encryption and fetches the block.
func (c *Client) Encrypt(plaintext string) (Result, error) {
	if err := ValidatePlaintext(plaintext); err != nil {
		return Result{Op: OpEncrypt}, err
	}

	res, err := c.run(OpEncrypt, plaintext)
	if err != nil {
		return res, err
	}
	res.Output = InterpretEncrypted(res.Steps[len(res.Steps)-1].Replies)

	return res, nil
}

// Decrypt loads a 32-hex-digit ciphertext, runs the decryption and fetches the block.
func (c *Client) Decrypt(ciphertext string) (Result, error) {
	if err := ValidateCiphertext(ciphertext); err != nil {
		return Result{Op: OpDecrypt}, err
	}

	res, err := c.run(OpDecrypt, ciphertext)
	if err != nil {
		return res, err
	}
	res.Output = InterpretDecrypted(res.Steps[len(res.Steps)-1].Replies)

	return res, nil
}

func (c *Client) run(op Operation, payload string) (Result, error) {
	res := Result{Op: op}
	plan := []Step{
		{Name: "load", Command: LoadStateCommand(payload)},
		{Name: "run", Command: op.command()},
		{Name: "fetch", Command: CmdFetchResult},
	}

	for _, step := range plan {
		replies, err := c.ex.Exchange(step.Command)
		if err != nil {
			return res, fmt.Errorf("%s %s step: %w", op, step.Name, err)
		}
		step.Replies = replies
		res.Steps = append(res.Steps, step)
		c.logger.Debug("step done", "op", op, "step", step.Name, "replies", len(replies))
	}

	return res, nil
}
