package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChainIdentity identifies a blockchain network. Two identities are the same chain when their ids match.
type ChainIdentity struct {
	id      uint64
	name    string
	opStack bool
}

// NewChainIdentity builds an identity. An empty name is filled from the well-known registry, and opStack is
// OR-ed with the registry flag, so a config can mark unlisted OP Stack chains.
func NewChainIdentity(id uint64, name string, opStack bool) ChainIdentity {
	if known, ok := knownChainsByID[id]; ok {
		if name == "" {
			name = known.name
		}
		opStack = opStack || known.opStack
	}
	return ChainIdentity{id: id, name: name, opStack: opStack}
}

func (c ChainIdentity) ID() uint64 {
	return c.id
}

func (c ChainIdentity) Name() string {
	return c.name
}

// IsOpStack reports whether blocks of this chain start with an L1 attributes deposit transaction.
func (c ChainIdentity) IsOpStack() bool {
	return c.opStack
}

func (c ChainIdentity) Equal(other ChainIdentity) bool {
	return c.id == other.id
}

func (c ChainIdentity) String() string {
	if c.name != "" {
		return c.name
	}
	return strconv.FormatUint(c.id, 10)
}

type chainIdentityJSON struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name,omitempty"`
	OpStack bool   `json:"op_stack,omitempty"`
}

func (c ChainIdentity) MarshalJSON() ([]byte, error) {
	return json.Marshal(chainIdentityJSON{ID: c.id, Name: c.name, OpStack: c.opStack})
}

func (c *ChainIdentity) UnmarshalJSON(data []byte) error {
	var v chainIdentityJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = NewChainIdentity(v.ID, v.Name, v.OpStack)
	return nil
}

var (
	Mainnet     = ChainIdentity{id: 1, name: "mainnet"}
	Sepolia     = ChainIdentity{id: 11155111, name: "sepolia"}
	Holesky     = ChainIdentity{id: 17000, name: "holesky"}
	Optimism    = ChainIdentity{id: 10, name: "optimism", opStack: true}
	Base        = ChainIdentity{id: 8453, name: "base", opStack: true}
	OpSepolia   = ChainIdentity{id: 11155420, name: "optimism-sepolia", opStack: true}
	BaseSepolia = ChainIdentity{id: 84532, name: "base-sepolia", opStack: true}
	Zora        = ChainIdentity{id: 7777777, name: "zora", opStack: true}
	Mode        = ChainIdentity{id: 34443, name: "mode", opStack: true}
	Fraxtal     = ChainIdentity{id: 252, name: "fraxtal", opStack: true}
	Worldchain  = ChainIdentity{id: 480, name: "worldchain", opStack: true}
	Unichain    = ChainIdentity{id: 130, name: "unichain", opStack: true}
	Ink         = ChainIdentity{id: 57073, name: "ink", opStack: true}
	Soneium     = ChainIdentity{id: 1868, name: "soneium", opStack: true}
	BSC         = ChainIdentity{id: 56, name: "bsc"}
	Arbitrum    = ChainIdentity{id: 42161, name: "arbitrum"}
	Polygon     = ChainIdentity{id: 137, name: "polygon"}
	Anvil       = ChainIdentity{id: 31337, name: "anvil"}
)

var knownChainsByID = map[uint64]ChainIdentity{}

func init() {
	for _, c := range []ChainIdentity{
		Mainnet, Sepolia, Holesky, Optimism, Base, OpSepolia, BaseSepolia, Zora, Mode, Fraxtal,
		Worldchain, Unichain, Ink, Soneium, BSC, Arbitrum, Polygon, Anvil,
	} {
		knownChainsByID[c.id] = c
	}
}

// ChainByID returns the well-known chain for id, or an unnamed identity.
func ChainByID(id uint64) ChainIdentity {
	return NewChainIdentity(id, "", false)
}

// ChainByName looks a well-known chain up by name, case-insensitively.
func ChainByName(name string) (ChainIdentity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range knownChainsByID {
		if c.name == name {
			return c, nil
		}
	}
	return ChainIdentity{}, fmt.Errorf("unknown chain name %q", name)
}
