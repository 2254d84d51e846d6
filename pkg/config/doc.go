// Package config provides configuration management for the budget allocator.
//
// Configuration is loaded with viper from, highest priority first:
//
//  1. Command-line flags
//  2. Environment variables prefixed with BUDGET_ALLOCATOR_
//     (e.g. BUDGET_ALLOCATOR_TIME_LIMIT=5s, BUDGET_ALLOCATOR_TABLE_SEPARATOR=";")
//  3. The configuration file named by --config
//  4. Default values
//
// Example configuration file:
//
//	log-level: debug
//	time-limit: 10s
//	table:
//	  separator: ";"
//	  encoding: ISO-8859-1
//	categories:
//	  default:
//	    lowerBoundDivisor: 4
//	  caterer:
//	    type: traiteur
//	    essential: true
//
// Example usage:
//
//	cfg, err := config.Load(viper.New(), cmd.Flags())
//	if err != nil {
//	    return err
//	}
//	policies, err := cfg.CategoryPolicies(logger)
package config
