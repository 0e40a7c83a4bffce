package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/listing"
)

func TestMakeBsonM(t *testing.T) {
	opts, err := listing.GetFindAllOptions(
		listing.WithCollection("0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D"),
		listing.WithFinalized(false),
		listing.WithPagination(20, 10),
	)
	require.NoError(t, err)

	qry, err := MakeBsonM(opts)
	assert.NoError(t, err)
	assert.Equal(
		t,
		bson.M{
			"collection": domain.Address("0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d"),
			// pointers are unpacked even when they hold the zero value
			"finalized": false,
			// seller and kind are unset, offset and limit are not stored
		},
		qry,
	)
}

func TestMakeBsonMPlainFields(t *testing.T) {
	type patch struct {
		Name    string `bson:"name,omitempty"`
		Address string `bson:"address"`
		Bio     string `bson:"bio"`
	}

	qry, err := MakeBsonM(&patch{Bio: "hey!yo!"})
	assert.NoError(t, err)
	assert.Equal(t, bson.M{"bio": "hey!yo!"}, qry)
}
