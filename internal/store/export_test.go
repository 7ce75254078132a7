package store

// RunStoreContract lets external test packages run the shared contract.
var RunStoreContract = runStoreContract
