package redis

// keyspace scopes every key this service writes under "pocketledger:<ns>:".
type keyspace string

func newKeyspace(namespace string) keyspace {
	return keyspace("pocketledger:" + namespace + ":")
}

func (k keyspace) key(name string) string {
	return string(k) + name
}
