// Package model defines domain models for chainweb ingestion.
package model

import "strconv"

// ChainID identifies one of the braided chains of a chainweb network.
type ChainID int64

func (c ChainID) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// Network names a chainweb deployment, e.g. mainnet01.
type Network string

var (
	Mainnet Network = "mainnet01"
	Testnet Network = "testnet04"
)

// mainnetLateGenesis is the height at which chains 10-19 joined mainnet.
const mainnetLateGenesis int64 = 852054

// GenesisHeight returns the first height of the chain on the network.
func GenesisHeight(network Network, chain ChainID) int64 {
	if network == Mainnet && chain >= 10 {
		return mainnetLateGenesis
	}
	return 0
}
