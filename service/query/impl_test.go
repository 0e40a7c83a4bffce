package query

import (
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/database/mongoclient"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/domain"
)

var (
	mockCTX = ctx.Background()
)

const (
	mockTable = domain.Table("query_test")
	dbName    = "testdb"
)

type dummy struct {
	Key   string `bson:"key"`
	Value int    `bson:"value"`
}

type querySuite struct {
	suite.Suite
	im       *impl
	mongoURI string
}

func TestQuery(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	suite.Run(t, &querySuite{mongoURI: uri})
}

func (q *querySuite) SetupTest() {
	client := mongoclient.MustConnect(mongoclient.Config{URI: q.mongoURI, AuthDB: "admin", DB: dbName, Majority: true})
	q.im = New(client, metrics.New("query-test"), false).(*impl)
	q.Require().NoError(q.im.collection(mockTable).Drop(mockCTX))
}

func (q *querySuite) TestUpsertAndFindOne() {
	q.Require().NoError(q.im.Upsert(mockCTX, mockTable, bson.M{"key": "a"}, dummy{"a", 1}))
	q.Require().NoError(q.im.Upsert(mockCTX, mockTable, bson.M{"key": "a"}, dummy{"a", 2}))

	res := dummy{}
	q.Require().NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"key": "a"}, &res))
	q.Equal(dummy{"a", 2}, res)

	q.Equal(ErrNotFound, q.im.FindOne(mockCTX, mockTable, bson.M{"key": "b"}, &res))
}

func (q *querySuite) TestInsertDuplicate() {
	q.Require().NoError(q.im.EnsureIndexes(mockCTX, mockTable, Index{Keys: []string{"key"}, Unique: true}))
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"a", 1}))
	q.Equal(ErrDuplicateKey, q.im.Insert(mockCTX, mockTable, dummy{"a", 2}))
}

func (q *querySuite) TestSearchAndCount() {
	for i, k := range []string{"c", "a", "b"} {
		q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{k, i}))
	}
	res := []dummy{}
	q.Require().NoError(q.im.Search(mockCTX, mockTable, 1, 0, []string{"key"}, bson.M{}, &res))
	q.Equal([]dummy{{"b", 2}, {"c", 0}}, res)

	res = []dummy{}
	q.Require().NoError(q.im.Search(mockCTX, mockTable, 0, 1, []string{"-key"}, bson.M{}, &res))
	q.Equal([]dummy{{"c", 0}}, res)

	n, err := q.im.Count(mockCTX, mockTable, bson.M{"value": bson.M{"$gte": 1}})
	q.NoError(err)
	q.Equal(2, n)
}

func (q *querySuite) TestRemove() {
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"a", 1}))
	q.NoError(q.im.Remove(mockCTX, mockTable, bson.M{"key": "a"}))
	q.Equal(ErrNotFound, q.im.Remove(mockCTX, mockTable, bson.M{"key": "a"}))
}

func (q *querySuite) TestIncrement() {
	res := dummy{}
	q.Require().NoError(q.im.Increment(mockCTX, mockTable, bson.M{"key": "seq"}, &res, "value", 1))
	q.Equal(1, res.Value)
	q.Require().NoError(q.im.Increment(mockCTX, mockTable, bson.M{"key": "seq"}, &res, "value", 1))
	q.Equal(2, res.Value)
}
