package app

// DummyPassword открыт для внешних тестов пакета.
const DummyPassword = dummyPassword
