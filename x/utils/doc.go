// Package utils provides decorators shared by all instruction handlers.
package utils
