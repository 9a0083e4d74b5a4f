package evaluation

// Max value of an unsigned 32-bit integer, which is what murmurhash returns
const maxHashValue uint32 = 4294967295

const rolloutHashSeed = 0

// PercentageBucket maps an entity/config pair to a stable bucket in
// [0,100]. This is a cross-SDK compatibility contract, byte-exact:
//
//	bucket = floor(murmur3_32(utf8(entityID + ":" + configID), seed=0) / 0xFFFFFFFF * 100)
//
// Every SDK for the service must bucket identical inputs identically so
// that rollout decisions survive restarts and agree across processes and
// languages. Do not change the hash function, the seed, the separator or
// the scaling without a coordinated service-wide version bump.
func PercentageBucket(entityID, configID string) int {
	tag := entityID + ":" + configID
	return int(float64(murmurhashV3(tag, rolloutHashSeed)) / float64(maxHashValue) * 100)
}

// shouldRollout decides gradual exposure: a percentage of 100 always
// passes, otherwise the entity's bucket must fall below the threshold.
func shouldRollout(percentage int, entityID, configID string) bool {
	return percentage >= 100 || PercentageBucket(entityID, configID) < percentage
}
