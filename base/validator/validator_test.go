package validator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
}

func (s *ValidatorTestSuite) TestIsValidAddress() {
	tests := []struct {
		desc       string
		address    string
		expIsValid bool
	}{
		{
			desc:       "invalid address",
			address:    "0x000",
			expIsValid: false,
		},
		{
			desc:       "checksummed bayc",
			address:    "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D",
			expIsValid: true,
		},
		{
			desc:       "lower case bayc",
			address:    "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d",
			expIsValid: true,
		},
		{
			desc:       "ens name",
			address:    "artist.eth",
			expIsValid: false,
		},
	}
	for _, t := range tests {
		s.Equal(t.expIsValid, IsValidAddress(t.address), t.desc)
	}
}

func (s *ValidatorTestSuite) TestTags() {
	type params struct {
		Address string `validate:"required,address"`
		Price   string `validate:"required,ether"`
	}
	v := NewCustomValidator(New())
	s.NoError(v.Validate(&params{Address: "0x939ae6a4c8dfdbb1f7085189574f0a938013952b", Price: "2.6"}))
	s.Error(v.Validate(&params{Address: "0x000", Price: "2.6"}))
	s.Error(v.Validate(&params{Address: "0x939ae6a4c8dfdbb1f7085189574f0a938013952b", Price: "-1"}))
	// below one wei
	s.Error(v.Validate(&params{Address: "0x939ae6a4c8dfdbb1f7085189574f0a938013952b", Price: "0.0000000000000000001"}))
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}
