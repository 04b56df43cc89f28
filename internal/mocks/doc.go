// Package mocks provides shared test doubles for the store and auth
// interfaces.
//
// Store mocks are testify mocks: set expectations with On and verify them with
// AssertExpectations. WithTx returns the receiver, so expectations set on a
// mock also apply inside transactions.
//
//	users := new(mocks.UserStore)
//	users.On("GetByID", mock.Anything, userID).Return(user, nil)
//
// The auth doubles use function fields with fixed defaults instead.
package mocks
