package autocompare

import (
	"math/big"
	"net/netip"
	"time"
)

type Consumer struct {
	FirstName   string
	LastName    string
	Age         int
	DateOfBirth time.Time
	Address     *Address
	Tags        []string
	Attributes  map[int]string
}

type Address struct {
	AddressLine string
	City        string
	Zip         string
}

type Cart struct {
	Owner string
	Items []Item
}

type Item struct {
	ID    int
	Price float64
}

type Ledger struct {
	Entries map[string]Item
}

type Node struct {
	Name     string
	Next     *Node
	Children []*Node
}

type Profile struct {
	Nick    *string
	Avatar  []byte
	Extra   interface{}
	private int
}

type Broken struct {
	Name string
	Done chan struct{}
}

type Tagged struct {
	Secret string `compare:"-"`
	Name   string
	Lines  []Line `compare:"key=Number,default=-1"`
}

type Line struct {
	Number int
	Text   string
}

type BadTag struct {
	Lines []Line `compare:"bogus=1"`
}

type Host struct {
	Name   string
	Addr   netip.Addr
	Digest [4]byte
	Serial *big.Int
	Ratio  float64
	Window [2]float64
}
