package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greendrake/commentguard/internal/testutil"
)

func TestConnectDB(t *testing.T) {
	uri := testutil.MongoURI()
	if uri == "" {
		t.Skip("MONGO_URI_TEST not set, skipping MongoDB test")
	}

	client, database, err := ConnectDB(uri, "testdb_connect")
	require.NoError(t, err)
	assert.Equal(t, "testdb_connect", database.Name())
	require.NoError(t, client.Ping(context.Background(), nil))
	assert.NoError(t, DisconnectDB(client))
}

func TestConnectDB_BadURI(t *testing.T) {
	_, _, err := ConnectDB("not-a-mongo-uri", "x")
	assert.Error(t, err)
}
