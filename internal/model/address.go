package model

import (
	"net"

	"github.com/pkg/errors"
)

// Address is an opaque network locator. It is comparable and usable as a map
// key; equality is structural.
type Address struct {
	Host string `json:"host"`
	Port string `json:"port"`
}

func NewAddress(host, port string) Address {
	return Address{Host: host, Port: port}
}

// ParseAddress parses a "host:port" string.
func ParseAddress(s string) (Address, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, errors.Wrapf(err, "parse address %q", s)
	}
	return Address{Host: host, Port: port}, nil
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, a.Port)
}

func (a Address) Equal(other Address) bool {
	return a == other
}

func (a Address) IsZero() bool {
	return a == Address{}
}
