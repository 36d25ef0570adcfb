// Package console implements the interactive encrypt/decrypt prompt.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/skobkin/cipherbridge/internal/cipher"
)

const (
	actionPrompt     = "Choose an action: (E)ncrypt or (D)ecrypt? "
	encryptPrompt    = "Enter the message you want to encrypt (16 characters): "
	decryptPrompt    = "Enter the message you want to decrypt (16 bytes in HEX format, 32 characters): "
	invalidChoiceMsg = "Invalid choice."
)

// Operations is what the prompt drives. *cipher.Client implements it.
type Operations interface {
	Encrypt(plaintext string) (cipher.Result, error)
	Decrypt(ciphertext string) (cipher.Result, error)
}

// Run asks for one operation and its message, runs it and prints the replies.
// Validation problems are printed and end the run without an error.
func Run(in io.Reader, out io.Writer, ops Operations) error {
	reader := bufio.NewReader(in)

	action, err := prompt(reader, out, actionPrompt)
	if err != nil {
		return err
	}

	var (
		res    cipher.Result
		runErr error
	)
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "e":
		msg, err := prompt(reader, out, encryptPrompt)
		if err != nil {
			return err
		}
		res, runErr = ops.Encrypt(msg)
	case "d":
		msg, err := prompt(reader, out, decryptPrompt)
		if err != nil {
			return err
		}
		res, runErr = ops.Decrypt(strings.TrimSpace(msg))
	default:
		_, err := fmt.Fprintln(out, invalidChoiceMsg)
		return err
	}

	if errors.Is(runErr, cipher.ErrValidation) {
		_, err := fmt.Fprintln(out, runErr.Error())
		return err
	}
	if err := Print(out, res); err != nil {
		return err
	}

	return runErr
}

// Print writes the replies of the state and run steps verbatim, then the
// interpreted result lines.
func Print(out io.Writer, res cipher.Result) error {
	for i, step := range res.Steps {
		if i == len(res.Steps)-1 && step.Command == cipher.CmdFetchResult {
			break
		}
		for _, line := range step.Replies {
			if _, err := fmt.Fprintln(out, line.Value); err != nil {
				return err
			}
		}
	}

	for _, o := range res.Output {
		if _, err := fmt.Fprintln(out, formatOutput(res.Op, o)); err != nil {
			return err
		}
	}

	return nil
}

func formatOutput(op cipher.Operation, o cipher.Output) string {
	switch {
	case op == cipher.OpDecrypt:
		return "Decrypted message from device: " + o.Value
	case o.Kind == cipher.OutputHex:
		return "Hexadecimal output from device: " + o.Value
	default:
		return "Encrypted output from device: " + o.Value
	}
}

func prompt(r *bufio.Reader, out io.Writer, text string) (string, error) {
	if _, err := fmt.Fprint(out, text); err != nil {
		return "", err
	}

	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
