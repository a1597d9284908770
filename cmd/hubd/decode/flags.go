// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package decode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/spf13/pflag"

	"github.com/cryptoalgebra/algebra-modular-hub/hooklist"
)

const JSONKey = "json"

var (
	errMissingWord = errors.New("expected exactly one hook list word")
	errInvalidWord = errors.New("invalid hook list word")
)

func AddFlags(flags *pflag.FlagSet) {
	flags.Bool(JSONKey, false, "Print the entries as JSON")
}

type Config struct {
	List hooklist.List
	JSON bool
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	printJSON, err := flags.GetBool(JSONKey)
	if err != nil {
		return nil, err
	}

	if flags.NArg() != 1 {
		return nil, errMissingWord
	}
	b, err := decodeWord(flags.Arg(0))
	if err != nil {
		return nil, err
	}
	if len(b) > 32 {
		return nil, fmt.Errorf("%w: word is %d bytes", hooklist.ErrInvalidEncoding, len(b))
	}
	list, err := hooklist.FromBytes(common.LeftPadBytes(b, 32))
	if err != nil {
		return nil, err
	}

	return &Config{
		List: list,
		JSON: printJSON,
	}, nil
}

// decodeWord accepts hex with or without the 0x prefix, and odd lengths.
func decodeWord(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hexutil.Decode("0x" + s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidWord, err)
	}
	return b, nil
}
